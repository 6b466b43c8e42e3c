package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

// feedbackRepository is the GORM implementation of domain.FeedbackRepository.
type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates the feedback repository.
func NewFeedbackRepository(db *gorm.DB) domain.FeedbackRepository {
	return &feedbackRepository{db: db}
}

// Create stores one feedback entry.
func (r *feedbackRepository) Create(ctx context.Context, fb *entity.Feedback) error {
	m := FeedbackModel{
		SessionID: fb.SessionID,
		UserID:    fb.UserID,
		Rating:    fb.Rating,
		Comment:   fb.Comment,
		CreatedAt: time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	fb.ID = m.ID
	fb.CreatedAt = m.CreatedAt
	return nil
}

// ListBySession returns a session's feedback entries, newest first.
func (r *feedbackRepository) ListBySession(ctx context.Context, sessionID string) ([]*entity.Feedback, error) {
	var models []FeedbackModel
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]*entity.Feedback, len(models))
	for i := range models {
		items[i] = toFeedbackEntity(&models[i])
	}
	return items, nil
}
