package dto

// ChatStreamRequest is the streaming chat request body.
type ChatStreamRequest struct {
	SessionID    string `json:"sessionId"`
	Message      string `json:"message"`
	UserID       string `json:"userId"`
	IsVoiceInput bool   `json:"isVoiceInput"`
	// Session creation attributes, ignored for existing sessions.
	Scenario   string `json:"scenario,omitempty"`
	EntryPoint string `json:"entryPoint,omitempty"`
	LessonID   string `json:"lessonId,omitempty"`
}

// ChatResponse is the non-streaming chat response body.
type ChatResponse struct {
	SessionID string `json:"sessionId"`
	Response  string `json:"response"`
}

// SessionResponse is one session in list/detail responses.
type SessionResponse struct {
	SessionID    string  `json:"sessionId"`
	EntryPoint   string  `json:"entryPoint,omitempty"`
	LessonID     string  `json:"lessonId,omitempty"`
	MessageCount int     `json:"messageCount"`
	CreatedAt    string  `json:"createdAt"`
	AbandonedAt  *string `json:"abandonedAt,omitempty"`
	CompletedAt  *string `json:"completedAt,omitempty"`
}

// MessageResponse is one turn in a history response.
type MessageResponse struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	OrderIndex int    `json:"orderIndex"`
	CreatedAt  string `json:"createdAt"`
}

// FeedbackRequest is the feedback submission body.
type FeedbackRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}
