package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

// chatRepository is the GORM implementation of domain.ChatRepository.
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates the session/message repository.
func NewChatRepository(db *gorm.DB) domain.ChatRepository {
	return &chatRepository{db: db}
}

// GetOrCreateSession returns the session for sessionID, creating a new
// one when sessionID is empty or unknown. Scenario, entry point and
// lesson linkage are recorded only at creation and never overwritten.
func (r *chatRepository) GetOrCreateSession(ctx context.Context, userID, sessionID, scenario, entryPoint, lessonID string) (*entity.ChatSession, error) {
	if sessionID != "" {
		var m ChatSessionModel
		err := r.db.WithContext(ctx).First(&m, "session_id = ?", sessionID).Error
		if err == nil {
			return toSessionEntity(&m), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	m := ChatSessionModel{
		SessionID:      sessionID,
		UserID:         userID,
		ScenarioPrompt: scenario,
		EntryPoint:     entryPoint,
		LessonID:       lessonID,
		CreatedAt:      time.Now(),
	}
	if m.SessionID == "" {
		m.SessionID = uuid.New().String()
	}

	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return toSessionEntity(&m), nil
}

// GetSession returns a session by id.
func (r *chatRepository) GetSession(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	var m ChatSessionModel
	err := r.db.WithContext(ctx).First(&m, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("session", sessionID)
		}
		return nil, err
	}
	return toSessionEntity(&m), nil
}

// ListMessages returns the session history ordered by order index.
func (r *chatRepository) ListMessages(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error) {
	var models []ChatMessageModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("order_index ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	messages := make([]*entity.ChatMessage, len(models))
	for i := range models {
		messages[i] = toMessageEntity(&models[i])
	}
	return messages, nil
}

// AppendMessage stores one turn. The order index is recomputed as
// count(existing)+1 at every append; no lock is held, so concurrent
// sends on one session can race. Callers serialize turns per session.
func (r *chatRepository) AppendMessage(ctx context.Context, sessionID, role, content string) (*entity.ChatMessage, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ChatMessageModel{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	m := ChatMessageModel{
		SessionID:  sessionID,
		Role:       role,
		Content:    content,
		OrderIndex: int(count) + 1,
		CreatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}

	// Keep the session's running counters in step with the new turn.
	if err := r.db.WithContext(ctx).
		Model(&ChatSessionModel{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"message_count":   gorm.Expr("message_count + 1"),
			"last_message_at": now,
		}).Error; err != nil {
		return nil, err
	}

	return toMessageEntity(&m), nil
}

// ListUserSessions returns all sessions of a user, newest first.
func (r *chatRepository) ListUserSessions(ctx context.Context, userID string) ([]*entity.ChatSession, error) {
	var models []ChatSessionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	sessions := make([]*entity.ChatSession, len(models))
	for i := range models {
		sessions[i] = toSessionEntity(&models[i])
	}
	return sessions, nil
}

// AbandonSession marks the session abandoned.
func (r *chatRepository) AbandonSession(ctx context.Context, sessionID string) error {
	return r.setLifecycleTimestamp(ctx, sessionID, "abandoned_at")
}

// CompleteSession marks the session completed.
func (r *chatRepository) CompleteSession(ctx context.Context, sessionID string) error {
	return r.setLifecycleTimestamp(ctx, sessionID, "completed_at")
}

func (r *chatRepository) setLifecycleTimestamp(ctx context.Context, sessionID, column string) error {
	result := r.db.WithContext(ctx).
		Model(&ChatSessionModel{}).
		Where("session_id = ?", sessionID).
		Update(column, time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("session", sessionID)
	}
	return nil
}
