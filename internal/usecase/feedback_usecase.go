package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

// feedbackUsecase records learner feedback on tutoring sessions.
type feedbackUsecase struct {
	feedbackRepo domain.FeedbackRepository
	chatRepo     domain.ChatRepository
	logger       *slog.Logger
}

// NewFeedbackUsecase creates the feedback use case.
func NewFeedbackUsecase(feedbackRepo domain.FeedbackRepository, chatRepo domain.ChatRepository, logger *slog.Logger) domain.FeedbackUsecase {
	return &feedbackUsecase{
		feedbackRepo: feedbackRepo,
		chatRepo:     chatRepo,
		logger:       logger,
	}
}

// Submit validates and stores one feedback entry. The session must exist.
func (u *feedbackUsecase) Submit(ctx context.Context, fb *entity.Feedback) error {
	if fb == nil {
		return domain.ErrInvalidInput
	}
	if fb.SessionID == "" {
		return domain.NewInvalidInputError("session id is required")
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return domain.NewInvalidInputError("rating must be between 1 and 5")
	}

	if _, err := u.chatRepo.GetSession(ctx, fb.SessionID); err != nil {
		return err
	}

	if err := u.feedbackRepo.Create(ctx, fb); err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	u.logger.Info("feedback recorded",
		"session_id", fb.SessionID,
		"rating", fb.Rating,
	)

	return nil
}
