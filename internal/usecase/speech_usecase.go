package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
)

// speechUsecase validates synthesis input before any provider call and
// relays the request to the synthesizer.
type speechUsecase struct {
	tts    domain.SpeechSynthesizer
	logger *slog.Logger
}

// NewSpeechUsecase creates the speech use case.
func NewSpeechUsecase(tts domain.SpeechSynthesizer, logger *slog.Logger) domain.SpeechUsecase {
	return &speechUsecase{
		tts:    tts,
		logger: logger,
	}
}

// Synthesize returns the complete audio buffer for the given text.
func (u *speechUsecase) Synthesize(ctx context.Context, req domain.SynthesisRequest) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.NewInvalidInputError("text is required")
	}

	audio, err := u.tts.Synthesize(ctx, req)
	if err != nil {
		u.logger.Error("speech synthesis failed", "error", err, "text_len", len(req.Text))
		return nil, err
	}

	return audio, nil
}

// SynthesizeStream returns the low-latency audio chunk stream. The
// returned error covers validation only; provider failures arrive on the
// error channel once the stream is live.
func (u *speechUsecase) SynthesizeStream(ctx context.Context, req domain.SynthesisRequest) (<-chan []byte, <-chan error, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, nil, domain.NewInvalidInputError("text is required")
	}

	audioCh, errCh := u.tts.SynthesizeStream(ctx, req)
	return audioCh, errCh, nil
}
