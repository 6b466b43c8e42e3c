package usecase

import (
	"regexp"
	"strings"
	"time"

	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

// Segmentation thresholds. A sentence is only worth synthesizing once it
// has some substance; token chunks flush often enough to keep the UI
// responsive.
const (
	minSentenceLen  = 20
	tokenChunkFlush = 50
)

// sentenceEnd matches a terminated sentence: one or more closing
// punctuation marks, optionally followed by trailing whitespace.
var sentenceEnd = regexp.MustCompile(`[.!?]+\s*$`)

// segmenter turns a sequence of text deltas into stream events. It keeps
// three accumulators: the full response, a token buffer flushed in fixed
// size chunks, and a sentence buffer flushed at sentence boundaries.
//
// The token, token_chunk and sentence_complete events are three
// independent views over the same delta source; every delta appears in
// all of them.
type segmenter struct {
	full     strings.Builder
	tokenBuf strings.Builder
	sentBuf  strings.Builder
}

func newSegmenter() *segmenter {
	return &segmenter{}
}

// feed consumes one delta and returns the events it produced, in emission
// order: the token event first, then any sentence boundary, then any
// chunk flush.
func (s *segmenter) feed(delta string) []entity.StreamEvent {
	s.full.WriteString(delta)
	s.tokenBuf.WriteString(delta)
	s.sentBuf.WriteString(delta)

	now := time.Now()
	events := []entity.StreamEvent{{
		Type:         entity.EventToken,
		Content:      delta,
		FullResponse: s.full.String(),
		Timestamp:    now,
	}}

	if sent := s.sentBuf.String(); len(sent) > minSentenceLen && sentenceEnd.MatchString(sent) {
		events = append(events, entity.StreamEvent{
			Type:         entity.EventSentenceComplete,
			Sentence:     strings.TrimSpace(sent),
			FullResponse: s.full.String(),
			Timestamp:    now,
		})
		s.sentBuf.Reset()
	}

	if s.tokenBuf.Len() > tokenChunkFlush {
		events = append(events, entity.StreamEvent{
			Type:         entity.EventTokenChunk,
			Chunk:        s.tokenBuf.String(),
			FullResponse: s.full.String(),
			Timestamp:    now,
		})
		s.tokenBuf.Reset()
	}

	return events
}

// fullResponse returns everything accumulated so far. Trailing text that
// never hit a sentence boundary is delivered only through the final
// complete event; no synthetic sentence_complete is forced at end of
// stream.
func (s *segmenter) fullResponse() string {
	return s.full.String()
}
