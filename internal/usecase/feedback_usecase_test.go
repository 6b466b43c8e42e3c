package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

type testFeedbackRepository struct {
	entries []*entity.Feedback
}

func (r *testFeedbackRepository) Create(ctx context.Context, fb *entity.Feedback) error {
	r.entries = append(r.entries, fb)
	return nil
}

func (r *testFeedbackRepository) ListBySession(ctx context.Context, sessionID string) ([]*entity.Feedback, error) {
	var out []*entity.Feedback
	for _, fb := range r.entries {
		if fb.SessionID == sessionID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func TestFeedbackSubmit(t *testing.T) {
	chatRepo := newTestChatRepository()
	chatRepo.sessions["s-1"] = &entity.ChatSession{SessionID: "s-1", UserID: "user-1", CreatedAt: time.Now()}
	fbRepo := &testFeedbackRepository{}
	uc := NewFeedbackUsecase(fbRepo, chatRepo, testLogger())

	err := uc.Submit(context.Background(), &entity.Feedback{
		SessionID: "s-1",
		Rating:    4,
		Comment:   "Helpful corrections",
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if len(fbRepo.entries) != 1 {
		t.Fatalf("stored %d entries, want 1", len(fbRepo.entries))
	}
}

func TestFeedbackValidation(t *testing.T) {
	tests := []struct {
		name    string
		fb      *entity.Feedback
		wantNot bool // want not-found instead of invalid input
	}{
		{"nil feedback", nil, false},
		{"missing session id", &entity.Feedback{Rating: 3}, false},
		{"rating too low", &entity.Feedback{SessionID: "s-1", Rating: 0}, false},
		{"rating too high", &entity.Feedback{SessionID: "s-1", Rating: 6}, false},
		{"unknown session", &entity.Feedback{SessionID: "missing", Rating: 3}, true},
	}

	chatRepo := newTestChatRepository()
	chatRepo.sessions["s-1"] = &entity.ChatSession{SessionID: "s-1", UserID: "user-1"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fbRepo := &testFeedbackRepository{}
			uc := NewFeedbackUsecase(fbRepo, chatRepo, testLogger())

			err := uc.Submit(context.Background(), tt.fb)
			if tt.wantNot {
				if !domain.IsNotFound(err) {
					t.Errorf("got error %v, want not found", err)
				}
			} else if !domain.IsInvalidInput(err) {
				t.Errorf("got error %v, want invalid input", err)
			}
			if len(fbRepo.entries) != 0 {
				t.Errorf("stored %d entries despite rejection", len(fbRepo.entries))
			}
		})
	}
}
