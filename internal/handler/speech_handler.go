package handler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/http1/resp"

	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/handler/dto"
)

// SpeechHandler serves the text-to-speech relay endpoints.
type SpeechHandler struct {
	usecase domain.SpeechUsecase
	logger  *slog.Logger
}

// NewSpeechHandler creates the speech handler.
func NewSpeechHandler(usecase domain.SpeechUsecase, logger *slog.Logger) *SpeechHandler {
	return &SpeechHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// Synthesize handles POST /api/v1/speech. It returns the complete audio
// buffer with an exact content length, or a JSON error body.
func (h *SpeechHandler) Synthesize(ctx context.Context, c *app.RequestContext) {
	req, ok := h.bindSpeechRequest(c)
	if !ok {
		return
	}

	audio, err := h.usecase.Synthesize(ctx, req)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	c.Response.Header.Set("Content-Type", "audio/mpeg")
	c.Response.Header.Set("Content-Length", fmt.Sprintf("%d", len(audio)))
	c.SetStatusCode(consts.StatusOK)
	c.Response.SetBody(audio)
}

// SynthesizeStream handles POST /api/v1/speech/stream. Audio chunks are
// piped to the client as they arrive from the provider; nothing is
// buffered beyond the in-flight chunk.
func (h *SpeechHandler) SynthesizeStream(ctx context.Context, c *app.RequestContext) {
	req, ok := h.bindSpeechRequest(c)
	if !ok {
		return
	}

	audioCh, errCh, err := h.usecase.SynthesizeStream(ctx, req)
	if err != nil {
		ErrorResponse(c, err)
		return
	}

	// Provider failures that occur before the first audio chunk still get
	// a proper JSON status; after that the connection is already
	// committed to raw audio and is simply closed on failure.
	first := true

	for {
		select {
		case chunk, open := <-audioCh:
			if !open {
				return
			}
			if first {
				first = false
				c.SetStatusCode(consts.StatusOK)
				c.Response.Header.Set("Content-Type", "audio/mpeg")
				c.Response.Header.Set("Cache-Control", "no-cache")
				c.Response.HijackWriter(resp.NewChunkedBodyWriter(&c.Response, c.GetWriter()))
			}
			if _, err := c.Write(chunk); err != nil {
				h.logger.Warn("client dropped speech stream", "error", err)
				return
			}
			if err := c.Flush(); err != nil {
				return
			}
		case err, open := <-errCh:
			if !open {
				errCh = nil
				continue
			}
			if err == nil {
				continue
			}
			h.logger.Error("speech stream failed", "error", err)
			if first {
				ErrorResponse(c, err)
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

// bindSpeechRequest decodes and validates the shared request shape.
func (h *SpeechHandler) bindSpeechRequest(c *app.RequestContext) (domain.SynthesisRequest, bool) {
	var body dto.SpeechRequest
	if err := c.BindJSON(&body); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		ErrorResponse(c, domain.ErrInvalidInput)
		return domain.SynthesisRequest{}, false
	}

	req := domain.SynthesisRequest{
		Text:                     body.Text,
		VoiceID:                  body.VoiceID,
		ModelID:                  body.ModelID,
		OutputFormat:             body.OutputFormat,
		OptimizeStreamingLatency: body.OptimizeStreamingLatency,
	}
	if body.VoiceSettings != nil {
		req.VoiceSettings = &domain.VoiceSettings{
			Stability:       body.VoiceSettings.Stability,
			SimilarityBoost: body.VoiceSettings.SimilarityBoost,
			Style:           body.VoiceSettings.Style,
			UseSpeakerBoost: body.VoiceSettings.UseSpeakerBoost,
		}
	}
	return req, true
}
