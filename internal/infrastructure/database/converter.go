package database

import (
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

func toSessionEntity(m *ChatSessionModel) *entity.ChatSession {
	return &entity.ChatSession{
		SessionID:      m.SessionID,
		UserID:         m.UserID,
		ScenarioPrompt: m.ScenarioPrompt,
		EntryPoint:     m.EntryPoint,
		LessonID:       m.LessonID,
		MessageCount:   m.MessageCount,
		CreatedAt:      m.CreatedAt,
		LastMessageAt:  m.LastMessageAt,
		AbandonedAt:    m.AbandonedAt,
		CompletedAt:    m.CompletedAt,
	}
}

func toMessageEntity(m *ChatMessageModel) *entity.ChatMessage {
	return &entity.ChatMessage{
		SessionID:  m.SessionID,
		Role:       m.Role,
		Content:    m.Content,
		OrderIndex: m.OrderIndex,
		CreatedAt:  m.CreatedAt,
	}
}

func toFeedbackEntity(m *FeedbackModel) *entity.Feedback {
	return &entity.Feedback{
		ID:        m.ID,
		SessionID: m.SessionID,
		UserID:    m.UserID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}
