package usecase

import (
	"context"
	"testing"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
)

// Counting SpeechSynthesizer for testing.
type testSynthesizer struct {
	audio []byte
	err   error
	calls int
}

func (s *testSynthesizer) Synthesize(ctx context.Context, req domain.SynthesisRequest) ([]byte, error) {
	s.calls++
	return s.audio, s.err
}

func (s *testSynthesizer) SynthesizeStream(ctx context.Context, req domain.SynthesisRequest) (<-chan []byte, <-chan error) {
	s.calls++
	audioCh := make(chan []byte, 1)
	errCh := make(chan error, 1)
	if s.err != nil {
		errCh <- s.err
	} else {
		audioCh <- s.audio
	}
	close(audioCh)
	close(errCh)
	return audioCh, errCh
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tts := &testSynthesizer{}
			uc := NewSpeechUsecase(tts, testLogger())

			if _, err := uc.Synthesize(context.Background(), domain.SynthesisRequest{Text: tt.text}); !domain.IsInvalidInput(err) {
				t.Errorf("got error %v, want invalid input", err)
			}
			if _, _, err := uc.SynthesizeStream(context.Background(), domain.SynthesisRequest{Text: tt.text}); !domain.IsInvalidInput(err) {
				t.Errorf("stream: got error %v, want invalid input", err)
			}
			if tts.calls != 0 {
				t.Errorf("provider called %d times despite validation failure", tts.calls)
			}
		})
	}
}

func TestSynthesizeReturnsAudio(t *testing.T) {
	tts := &testSynthesizer{audio: []byte{0xff, 0xf3, 0x01}}
	uc := NewSpeechUsecase(tts, testLogger())

	audio, err := uc.Synthesize(context.Background(), domain.SynthesisRequest{Text: "Hello learner"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if len(audio) != 3 {
		t.Errorf("got %d audio bytes, want 3", len(audio))
	}
	if tts.calls != 1 {
		t.Errorf("provider called %d times, want 1", tts.calls)
	}
}

func TestSynthesizePropagatesProviderError(t *testing.T) {
	tts := &testSynthesizer{err: domain.NewUpstreamAuthError("speech service")}
	uc := NewSpeechUsecase(tts, testLogger())

	if _, err := uc.Synthesize(context.Background(), domain.SynthesisRequest{Text: "Hello"}); !domain.IsUpstreamAuth(err) {
		t.Errorf("got error %v, want upstream auth", err)
	}
}
