package database

import (
	"time"
)

// ChatSessionModel is the chat_sessions table.
type ChatSessionModel struct {
	SessionID      string `gorm:"primaryKey;type:varchar(64)"`
	UserID         string `gorm:"index;type:varchar(64);not null"`
	ScenarioPrompt string `gorm:"type:text"`
	EntryPoint     string `gorm:"type:varchar(64)"`
	LessonID       string `gorm:"type:varchar(64)"`
	MessageCount   int    `gorm:"default:0"`
	CreatedAt      time.Time
	LastMessageAt  *time.Time
	AbandonedAt    *time.Time
	CompletedAt    *time.Time
}

// TableName names the table explicitly.
func (ChatSessionModel) TableName() string {
	return "chat_sessions"
}

// ChatMessageModel is the chat_messages table. OrderIndex is unique per
// session and strictly increasing.
type ChatMessageModel struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	SessionID  string `gorm:"index:idx_session_order,priority:1;type:varchar(64);not null"`
	Role       string `gorm:"type:varchar(16);not null"`
	Content    string `gorm:"type:text;not null"`
	OrderIndex int    `gorm:"index:idx_session_order,priority:2;not null"`
	CreatedAt  time.Time
}

// TableName names the table explicitly.
func (ChatMessageModel) TableName() string {
	return "chat_messages"
}

// FeedbackModel is the session_feedback table.
type FeedbackModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"index;type:varchar(64);not null"`
	UserID    string `gorm:"type:varchar(64)"`
	Rating    int    `gorm:"not null"`
	Comment   string `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName names the table explicitly.
func (FeedbackModel) TableName() string {
	return "session_feedback"
}

// Models returns every model to register with AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&ChatSessionModel{},
		&ChatMessageModel{},
		&FeedbackModel{},
	}
}
