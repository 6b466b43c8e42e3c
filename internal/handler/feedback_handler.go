package handler

import (
	"context"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
	"github.com/linguaflow/tutor-apiserver/internal/handler/dto"
)

// FeedbackHandler serves session feedback submission.
type FeedbackHandler struct {
	usecase domain.FeedbackUsecase
	logger  *slog.Logger
}

// NewFeedbackHandler creates the feedback handler.
func NewFeedbackHandler(usecase domain.FeedbackUsecase, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Submit handles POST /api/v1/feedback.
func (h *FeedbackHandler) Submit(ctx context.Context, c *app.RequestContext) {
	var req dto.FeedbackRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}

	fb := &entity.Feedback{
		SessionID: req.SessionID,
		UserID:    req.UserID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := h.usecase.Submit(ctx, fb); err != nil {
		ErrorResponse(c, err)
		return
	}

	CreatedResponse(c, nil)
}
