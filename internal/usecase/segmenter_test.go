package usecase

import (
	"strings"
	"testing"

	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

func collectEvents(deltas []string) ([]entity.StreamEvent, *segmenter) {
	seg := newSegmenter()
	var events []entity.StreamEvent
	for _, d := range deltas {
		events = append(events, seg.feed(d)...)
	}
	return events, seg
}

func eventsOfType(events []entity.StreamEvent, typ string) []entity.StreamEvent {
	var out []entity.StreamEvent
	for _, ev := range events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestSegmenterTokenConcatenation(t *testing.T) {
	deltas := []string{"Hel", "lo the", "re! How are ", "you doing to", "day?"}

	events, seg := collectEvents(deltas)

	var concat strings.Builder
	for _, ev := range eventsOfType(events, entity.EventToken) {
		concat.WriteString(ev.Content)
	}

	want := strings.Join(deltas, "")
	if concat.String() != want {
		t.Errorf("token concatenation = %q, want %q", concat.String(), want)
	}
	if seg.fullResponse() != want {
		t.Errorf("fullResponse = %q, want %q", seg.fullResponse(), want)
	}
}

func TestSegmenterEmitsTokenPerDelta(t *testing.T) {
	deltas := []string{"One", " two", " three."}

	events, _ := collectEvents(deltas)

	tokens := eventsOfType(events, entity.EventToken)
	if len(tokens) != len(deltas) {
		t.Fatalf("got %d token events, want %d", len(tokens), len(deltas))
	}
	for i, ev := range tokens {
		if ev.Content != deltas[i] {
			t.Errorf("token[%d] = %q, want %q", i, ev.Content, deltas[i])
		}
	}
}

func TestSegmenterSentenceBoundaries(t *testing.T) {
	tests := []struct {
		name          string
		deltas        []string
		wantSentences []string
	}{
		{
			name:          "short sentence below threshold does not fire",
			deltas:        []string{"Hi."},
			wantSentences: nil,
		},
		{
			name:          "short sentence accumulates into the next one",
			deltas:        []string{"Hi.", " ", "Go on, tell me more about it."},
			wantSentences: []string{"Hi. Go on, tell me more about it."},
		},
		{
			name:          "long sentence fires once terminated",
			deltas:        []string{"This is a reasonably long sentence", ", isn't it?"},
			wantSentences: []string{"This is a reasonably long sentence, isn't it?"},
		},
		{
			name:          "terminator with trailing whitespace still matches",
			deltas:        []string{"That was a really great answer! "},
			wantSentences: []string{"That was a really great answer!"},
		},
		{
			name:          "unterminated trailing text never fires",
			deltas:        []string{"This trails off without any punctuation at all"},
			wantSentences: nil,
		},
		{
			name:          "buffer resets after each sentence",
			deltas:        []string{"Here is the first full sentence.", " And here is the second one too!"},
			wantSentences: []string{"Here is the first full sentence.", "And here is the second one too!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, _ := collectEvents(tt.deltas)

			var got []string
			for _, ev := range eventsOfType(events, entity.EventSentenceComplete) {
				got = append(got, ev.Sentence)
			}

			if len(got) != len(tt.wantSentences) {
				t.Fatalf("got %d sentences %v, want %d %v", len(got), got, len(tt.wantSentences), tt.wantSentences)
			}
			for i := range got {
				if got[i] != tt.wantSentences[i] {
					t.Errorf("sentence[%d] = %q, want %q", i, got[i], tt.wantSentences[i])
				}
			}
		})
	}
}

func TestSegmenterTokenChunkFlush(t *testing.T) {
	seg := newSegmenter()

	// 30 characters: no flush yet
	events := seg.feed(strings.Repeat("a", 30))
	if chunks := eventsOfType(events, entity.EventTokenChunk); len(chunks) != 0 {
		t.Fatalf("unexpected chunk flush at 30 chars: %v", chunks)
	}

	// 30 more pushes the buffer past 50 and flushes all 60
	events = seg.feed(strings.Repeat("b", 30))
	chunks := eventsOfType(events, entity.EventTokenChunk)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunk events, want 1", len(chunks))
	}
	want := strings.Repeat("a", 30) + strings.Repeat("b", 30)
	if chunks[0].Chunk != want {
		t.Errorf("chunk = %q, want %q", chunks[0].Chunk, want)
	}

	// the buffer restarts empty: the next small delta must not flush
	events = seg.feed("c")
	if chunks := eventsOfType(events, entity.EventTokenChunk); len(chunks) != 0 {
		t.Fatalf("chunk buffer did not reset after flush")
	}

	// and a fresh chunk carries no residue from the previous one
	events = seg.feed(strings.Repeat("d", 55))
	chunks = eventsOfType(events, entity.EventTokenChunk)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunk events, want 1", len(chunks))
	}
	if got := chunks[0].Chunk; got != "c"+strings.Repeat("d", 55) {
		t.Errorf("chunk carried residue: %q", got)
	}
}

func TestSegmenterFullResponseOnEveryEvent(t *testing.T) {
	deltas := []string{"The quick brown fox jumps over the lazy dog. ", "Again!"}

	events, seg := collectEvents(deltas)

	for i, ev := range events {
		if ev.FullResponse == "" {
			t.Errorf("event %d (%s) has empty fullResponse", i, ev.Type)
		}
	}

	last := events[len(events)-1]
	if last.FullResponse != seg.fullResponse() {
		t.Errorf("last event fullResponse = %q, want %q", last.FullResponse, seg.fullResponse())
	}
}
