package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
	"github.com/linguaflow/tutor-apiserver/internal/handler/dto"
)

// SessionHandler serves session lifecycle and history endpoints.
type SessionHandler struct {
	usecase domain.ChatUsecase
	logger  *slog.Logger
}

// NewSessionHandler creates the session handler.
func NewSessionHandler(usecase domain.ChatUsecase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// History handles GET /api/v1/sessions/:id/messages.
func (h *SessionHandler) History(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	messages, err := h.usecase.SessionHistory(ctx, sessionID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	items := make([]dto.MessageResponse, len(messages))
	for i, m := range messages {
		items[i] = dto.MessageResponse{
			Role:       m.Role,
			Content:    m.Content,
			OrderIndex: m.OrderIndex,
			CreatedAt:  m.CreatedAt.Format(time.RFC3339),
		}
	}

	SuccessResponse(c, ListResponse{Items: items, TotalCount: len(items)})
}

// ListByUser handles GET /api/v1/users/:id/sessions.
func (h *SessionHandler) ListByUser(ctx context.Context, c *app.RequestContext) {
	userID := c.Param("id")

	sessions, err := h.usecase.ListUserSessions(ctx, userID)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	items := make([]dto.SessionResponse, len(sessions))
	for i, s := range sessions {
		items[i] = toSessionResponse(s)
	}

	SuccessResponse(c, ListResponse{Items: items, TotalCount: len(items)})
}

// Abandon handles POST /api/v1/sessions/:id/abandon.
func (h *SessionHandler) Abandon(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	if err := h.usecase.AbandonSession(ctx, sessionID); err != nil {
		ErrorResponse(c, err)
		return
	}

	h.logger.Info("session abandoned", "session_id", sessionID)
	SuccessResponse(c, nil)
}

// Complete handles POST /api/v1/sessions/:id/complete.
func (h *SessionHandler) Complete(ctx context.Context, c *app.RequestContext) {
	sessionID := c.Param("id")

	if err := h.usecase.CompleteSession(ctx, sessionID); err != nil {
		ErrorResponse(c, err)
		return
	}

	h.logger.Info("session completed", "session_id", sessionID)
	SuccessResponse(c, nil)
}

func toSessionResponse(s *entity.ChatSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		SessionID:    s.SessionID,
		EntryPoint:   s.EntryPoint,
		LessonID:     s.LessonID,
		MessageCount: s.MessageCount,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
	}
	if s.AbandonedAt != nil {
		v := s.AbandonedAt.Format(time.RFC3339)
		resp.AbandonedAt = &v
	}
	if s.CompletedAt != nil {
		v := s.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp
}
