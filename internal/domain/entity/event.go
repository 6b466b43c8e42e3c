package entity

import "time"

// StreamEvent types written to the live chat stream.
const (
	EventToken            = "token"
	EventTokenChunk       = "token_chunk"
	EventSentenceComplete = "sentence_complete"
	EventComplete         = "complete"
	EventError            = "error"
)

// StreamEvent is one ephemeral unit sent over a live chat stream. Events
// are owned by the active request and discarded when the connection
// closes; they are never persisted.
//
// The token, token_chunk and sentence_complete variants are redundant
// views over the same underlying text. Consumers must tolerate the
// overlap.
type StreamEvent struct {
	Type         string    `json:"type"`
	Content      string    `json:"content,omitempty"`      // token: single delta
	Chunk        string    `json:"chunk,omitempty"`        // token_chunk: buffered run of deltas
	Sentence     string    `json:"sentence,omitempty"`     // sentence_complete: one terminated sentence
	FullResponse string    `json:"fullResponse,omitempty"` // running accumulator
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
