package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
	"github.com/linguaflow/tutor-apiserver/internal/handler/dto"
)

// doneSentinel is the terminal frame written after a successful stream,
// distinct from any typed event. A client that has seen it may assume
// the assistant turn is durable.
const doneSentinel = "[DONE]"

// ChatHandler serves the tutoring chat endpoints.
type ChatHandler struct {
	usecase domain.ChatUsecase
	logger  *slog.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(usecase domain.ChatUsecase, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// StreamChat handles POST /api/v1/chat/stream. It relays the typed event
// stream as newline-delimited SSE frames in strict arrival order and
// finishes with either the [DONE] sentinel (after a complete event) or a
// single error event.
func (h *ChatHandler) StreamChat(ctx context.Context, c *app.RequestContext) {
	var req dto.ChatStreamRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}

	chatReq := &domain.ChatRequest{
		SessionID:    req.SessionID,
		UserID:       req.UserID,
		Message:      req.Message,
		IsVoiceInput: req.IsVoiceInput,
		Scenario:     req.Scenario,
		EntryPoint:   req.EntryPoint,
		LessonID:     req.LessonID,
	}

	h.logger.Info("chat stream request received",
		"session_id", req.SessionID,
		"user_id", req.UserID,
		"voice_input", req.IsVoiceInput,
	)

	eventCh, err := h.usecase.ChatStream(ctx, chatReq)
	if err != nil {
		h.logger.Error("failed to open chat stream", "error", err)
		ErrorResponse(c, err)
		return
	}

	// Status and headers must be set before the SSE writer takes over.
	c.SetStatusCode(consts.StatusOK)
	c.Response.Header.Set("Cache-Control", "no-cache")
	c.Response.Header.Set("Connection", "keep-alive")

	writer := sse.NewWriter(c)
	defer writer.Close()

	for event := range eventCh {
		if err := h.writeSSEJSON(writer, event); err != nil {
			h.logger.Error("failed to write stream event", "error", err)
			return
		}

		switch event.Type {
		case entity.EventComplete:
			// Persistence already happened upstream of this event.
			if err := writer.WriteEvent("", "", []byte(doneSentinel)); err != nil {
				h.logger.Error("failed to write done sentinel", "error", err)
			}
			return
		case entity.EventError:
			return
		}
	}
}

// Chat handles POST /api/v1/chat, the classic request/response endpoint.
// Transient provider failures are retried upstream before this returns.
func (h *ChatHandler) Chat(ctx context.Context, c *app.RequestContext) {
	var req dto.ChatStreamRequest
	if err := c.BindJSON(&req); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		ErrorResponse(c, domain.ErrInvalidInput)
		return
	}

	resp, err := h.usecase.Chat(ctx, &domain.ChatRequest{
		SessionID:    req.SessionID,
		UserID:       req.UserID,
		Message:      req.Message,
		IsVoiceInput: req.IsVoiceInput,
		Scenario:     req.Scenario,
		EntryPoint:   req.EntryPoint,
		LessonID:     req.LessonID,
	})
	if err != nil {
		h.logger.Error("chat failed", "error", err)
		ErrorResponse(c, err)
		return
	}

	SuccessResponse(c, dto.ChatResponse{
		SessionID: resp.SessionID,
		Response:  resp.Response,
	})
}

// writeSSEJSON writes one event as a single data frame. The Hertz SSE
// writer adds the "data: " prefix and flushes to the client itself.
func (h *ChatHandler) writeSSEJSON(writer *sse.Writer, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	return writer.WriteEvent("", "", jsonData)
}
