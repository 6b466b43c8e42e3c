package entity

import "time"

// Message roles stored in the conversation history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatSession identifies one tutoring conversation.
type ChatSession struct {
	SessionID      string // opaque id, unique and immutable once created
	UserID         string
	ScenarioPrompt string // system prompt applied to every turn
	EntryPoint     string // where in the product flow the session started
	LessonID       string // optional lesson/course linkage
	MessageCount   int
	CreatedAt      time.Time
	LastMessageAt  *time.Time
	AbandonedAt    *time.Time
	CompletedAt    *time.Time
}

// ChatMessage is one persisted turn within a session.
type ChatMessage struct {
	SessionID  string
	Role       string // user or assistant
	Content    string
	OrderIndex int // strictly increasing within the session, assigned as prev max + 1
	CreatedAt  time.Time
}

// PromptMessage is one role-tagged entry of a provider prompt.
// Prompts are derived per request and never stored.
type PromptMessage struct {
	Role    string
	Content string
}

// TextDelta is one incremental fragment of generated text from the
// completion provider's streaming response. A non-nil Err aborts the
// sequence; the channel is closed on exhaustion either way.
type TextDelta struct {
	Content string
	Err     error
}

// Feedback is a user rating attached to a session.
type Feedback struct {
	ID        uint
	SessionID string
	UserID    string
	Rating    int // 1..5
	Comment   string
	CreatedAt time.Time
}
