package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

// maxMessageLen bounds a single inbound turn.
const maxMessageLen = 10000

// chatUsecase implements domain.ChatUsecase. It coordinates the
// completion provider and the persistence gateway and drives the
// typed event stream for one turn.
type chatUsecase struct {
	llm      domain.CompletionStreamer
	chatRepo domain.ChatRepository
	logger   *slog.Logger
}

// NewChatUsecase creates the chat use case.
func NewChatUsecase(
	llm domain.CompletionStreamer,
	chatRepo domain.ChatRepository,
	logger *slog.Logger,
) domain.ChatUsecase {
	return &chatUsecase{
		llm:      llm,
		chatRepo: chatRepo,
		logger:   logger,
	}
}

// Chat sends one turn and waits for the complete response. This is the
// request/response path; transient provider failures are retried inside
// the provider client.
func (u *chatUsecase) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	session, history, err := u.prepareTurn(ctx, req)
	if err != nil {
		return nil, err
	}

	messages := newPromptBuilder(session.ScenarioPrompt).build(history, req.Message, req.IsVoiceInput)

	response, err := u.llm.CreateChatCompletion(ctx, messages)
	if err != nil {
		return nil, err
	}

	if _, err := u.chatRepo.AppendMessage(ctx, session.SessionID, entity.RoleAssistant, response); err != nil {
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}

	return &domain.ChatResponse{
		SessionID: session.SessionID,
		UserID:    session.UserID,
		Response:  response,
	}, nil
}

// ChatStream sends one turn and returns the typed event stream.
//
// The user turn is persisted before the provider call. The assistant
// turn is persisted only once the provider stream is fully exhausted,
// and before the complete event is emitted, so a client that sees the
// stream finish may assume durability. On any failure, or when the
// client disconnects mid-stream, the partial assistant response is
// discarded.
func (u *chatUsecase) ChatStream(ctx context.Context, req *domain.ChatRequest) (<-chan entity.StreamEvent, error) {
	session, history, err := u.prepareTurn(ctx, req)
	if err != nil {
		return nil, err
	}

	messages := newPromptBuilder(session.ScenarioPrompt).build(history, req.Message, req.IsVoiceInput)

	deltaCh, err := u.llm.StreamChatCompletion(ctx, messages)
	if err != nil {
		return nil, err
	}

	out := make(chan entity.StreamEvent, 100)
	go u.relay(ctx, session.SessionID, deltaCh, out)

	return out, nil
}

// relay pumps provider deltas through the segmenter onto the event
// channel in strict production order, then finishes the turn.
func (u *chatUsecase) relay(ctx context.Context, sessionID string, deltaCh <-chan entity.TextDelta, out chan<- entity.StreamEvent) {
	defer close(out)

	seg := newSegmenter()

	for delta := range deltaCh {
		if delta.Err != nil {
			u.logger.Error("completion stream failed",
				"session_id", sessionID,
				"error", delta.Err,
			)
			u.emit(ctx, out, errorEvent(delta.Err))
			return
		}
		for _, ev := range seg.feed(delta.Content) {
			if !u.emit(ctx, out, ev) {
				// client gone; drop the partial response
				u.logger.Info("chat stream canceled by client", "session_id", sessionID)
				return
			}
		}
	}

	full := seg.fullResponse()

	if ctx.Err() != nil {
		u.logger.Info("chat stream canceled by client", "session_id", sessionID)
		return
	}

	if _, err := u.chatRepo.AppendMessage(ctx, sessionID, entity.RoleAssistant, full); err != nil {
		u.logger.Error("failed to persist assistant message",
			"session_id", sessionID,
			"error", err,
		)
		u.emit(ctx, out, errorEvent(domain.NewInternalError(err)))
		return
	}

	u.emit(ctx, out, entity.StreamEvent{
		Type:         entity.EventComplete,
		FullResponse: full,
		Timestamp:    time.Now(),
	})
}

// emit writes one event unless the request context is gone. Reports
// whether the event was delivered.
func (u *chatUsecase) emit(ctx context.Context, out chan<- entity.StreamEvent, ev entity.StreamEvent) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func errorEvent(err error) entity.StreamEvent {
	return entity.StreamEvent{
		Type:      entity.EventError,
		Error:     domain.UserMessageFor(err),
		Timestamp: time.Now(),
	}
}

// prepareTurn validates the request, resolves the session, loads the
// prior history, and persists the user turn.
func (u *chatUsecase) prepareTurn(ctx context.Context, req *domain.ChatRequest) (*entity.ChatSession, []*entity.ChatMessage, error) {
	if err := u.validateChatRequest(req); err != nil {
		return nil, nil, err
	}

	session, err := u.chatRepo.GetOrCreateSession(ctx, req.UserID, req.SessionID, req.Scenario, req.EntryPoint, req.LessonID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get or create session: %w", err)
	}

	if req.SessionID == "" {
		u.logger.Info("new tutoring session started",
			"session_id", session.SessionID,
			"user_id", session.UserID,
			"entry_point", session.EntryPoint,
		)
	}

	// History is loaded before the user turn is appended so the current
	// message appears exactly once in the prompt.
	history, err := u.chatRepo.ListMessages(ctx, session.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}

	if _, err := u.chatRepo.AppendMessage(ctx, session.SessionID, entity.RoleUser, req.Message); err != nil {
		return nil, nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	return session, history, nil
}

func (u *chatUsecase) validateChatRequest(req *domain.ChatRequest) error {
	if req == nil {
		return domain.ErrInvalidInput
	}

	// Anonymous callers get a generated identity.
	if req.UserID == "" {
		req.UserID = uuid.New().String()
		u.logger.Info("anonymous user created", "user_id", req.UserID)
	}

	if req.Message == "" {
		return domain.NewInvalidInputError("message is required")
	}
	if len(req.Message) > maxMessageLen {
		return domain.NewInvalidInputError(fmt.Sprintf("message too long (max %d characters)", maxMessageLen))
	}

	return nil
}

// SessionHistory returns the persisted turns of a session in order.
func (u *chatUsecase) SessionHistory(ctx context.Context, sessionID string) ([]*entity.ChatMessage, error) {
	if sessionID == "" {
		return nil, domain.NewInvalidInputError("session id is required")
	}
	return u.chatRepo.ListMessages(ctx, sessionID)
}

// ListUserSessions returns a user's sessions, newest first.
func (u *chatUsecase) ListUserSessions(ctx context.Context, userID string) ([]*entity.ChatSession, error) {
	if userID == "" {
		return nil, domain.NewInvalidInputError("user id is required")
	}
	return u.chatRepo.ListUserSessions(ctx, userID)
}

// AbandonSession records an explicit abandon signal.
func (u *chatUsecase) AbandonSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.NewInvalidInputError("session id is required")
	}
	return u.chatRepo.AbandonSession(ctx, sessionID)
}

// CompleteSession records an explicit completion signal.
func (u *chatUsecase) CompleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.NewInvalidInputError("session id is required")
	}
	return u.chatRepo.CompleteSession(ctx, sessionID)
}
