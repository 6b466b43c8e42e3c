package domain

import (
	"context"

	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

// ============ Usecase-layer DTOs ============

// ChatRequest is one inbound chat turn.
type ChatRequest struct {
	SessionID    string // empty starts a new session
	UserID       string
	Message      string
	IsVoiceInput bool   // selects the voice-optimized tutor persona
	Scenario     string // scenario prompt, applied when a new session is created
	EntryPoint   string // applied when a new session is created
	LessonID     string // applied when a new session is created
}

// ChatResponse is the non-streaming chat result.
type ChatResponse struct {
	SessionID string
	UserID    string
	Response  string
}

// ChatRepository persists sessions and their ordered message history.
type ChatRepository interface {
	// GetOrCreateSession returns the session for sessionID, creating a new
	// one when sessionID is empty or unknown.
	GetOrCreateSession(ctx context.Context, userID, sessionID, scenario, entryPoint, lessonID string) (*entity.ChatSession, error)

	// GetSession returns a session by id.
	GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, error)

	// ListMessages returns the session history ordered by order index.
	ListMessages(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error)

	// AppendMessage stores one turn. The order index is computed as
	// count(existing messages)+1 at append time.
	AppendMessage(ctx context.Context, sessionID, role, content string) (*entity.ChatMessage, error)

	// ListUserSessions returns all sessions of a user, newest first.
	ListUserSessions(ctx context.Context, userID string) ([]*entity.ChatSession, error)

	// AbandonSession marks the session abandoned.
	AbandonSession(ctx context.Context, sessionID string) error

	// CompleteSession marks the session completed.
	CompleteSession(ctx context.Context, sessionID string) error
}

// FeedbackRepository persists session feedback.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *entity.Feedback) error
	ListBySession(ctx context.Context, sessionID string) ([]*entity.Feedback, error)
}

// CompletionStreamer is the completion provider client.
type CompletionStreamer interface {
	// StreamChatCompletion opens a token-streaming completion. The returned
	// channel yields text deltas in arrival order and is closed on
	// exhaustion; a delta with a non-nil Err aborts the sequence. The
	// sequence is not restartable.
	StreamChatCompletion(ctx context.Context, messages []entity.PromptMessage) (<-chan entity.TextDelta, error)

	// CreateChatCompletion is the non-streaming request/response path with
	// bounded retry on transient failures.
	CreateChatCompletion(ctx context.Context, messages []entity.PromptMessage) (string, error)
}

// VoiceSettings overrides a synthesis path's voice profile.
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// SynthesisRequest describes one text-to-speech call. Only Text is
// required; everything else falls back to the path's defaults.
type SynthesisRequest struct {
	Text                     string
	VoiceID                  string // empty falls back to the configured default voice
	ModelID                  string
	OutputFormat             string
	OptimizeStreamingLatency *int // 0..4, streaming path only
	VoiceSettings            *VoiceSettings
}

// SpeechSynthesizer is the text-to-speech provider client.
type SpeechSynthesizer interface {
	// Synthesize returns a complete full-quality audio buffer.
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)

	// SynthesizeStream returns audio chunks as they arrive from the
	// provider, without buffering the whole payload. The error channel
	// carries at most one error; both channels are closed when done.
	SynthesizeStream(ctx context.Context, req SynthesisRequest) (<-chan []byte, <-chan error)
}

// ChatUsecase drives the tutoring conversation.
type ChatUsecase interface {
	// Chat sends one turn and waits for the full response.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ChatStream sends one turn and returns the typed event stream. The
	// channel is closed after the terminal complete or error event.
	ChatStream(ctx context.Context, req *ChatRequest) (<-chan entity.StreamEvent, error)

	// SessionHistory returns the persisted turns of a session in order.
	SessionHistory(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error)

	// ListUserSessions returns a user's sessions, newest first.
	ListUserSessions(ctx context.Context, userID string) ([]*entity.ChatSession, error)

	// AbandonSession / CompleteSession record explicit lifecycle signals.
	AbandonSession(ctx context.Context, sessionID string) error
	CompleteSession(ctx context.Context, sessionID string) error
}

// SpeechUsecase validates and relays speech synthesis requests.
type SpeechUsecase interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
	SynthesizeStream(ctx context.Context, req SynthesisRequest) (<-chan []byte, <-chan error, error)
}

// FeedbackUsecase records user feedback on sessions.
type FeedbackUsecase interface {
	Submit(ctx context.Context, fb *entity.Feedback) error
}
