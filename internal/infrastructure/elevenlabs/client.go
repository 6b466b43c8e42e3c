package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/linguaflow/tutor-apiserver/internal/config"
	"github.com/linguaflow/tutor-apiserver/internal/domain"
)

// defaultVoiceID is the premium voice used when the caller does not pick
// one explicitly.
const defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

// Model and voice-setting profiles. Buffered synthesis favors fidelity;
// the streaming path trades it for latency.
const (
	bufferedModelID  = "eleven_multilingual_v2"
	streamingModelID = "eleven_flash_v2_5"
)

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

var (
	bufferedProfile  = voiceSettings{Stability: 0.5, SimilarityBoost: 0.75, Style: 0.8, UseSpeakerBoost: true}
	streamingProfile = voiceSettings{Stability: 0.4, SimilarityBoost: 0.5, Style: 0, UseSpeakerBoost: false}
)

// Client is the ElevenLabs text-to-speech client. It implements
// domain.SpeechSynthesizer.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	apiKey        string
	defaultVoice  string
	timeout       time.Duration // buffered synthesis
	streamTimeout time.Duration // low-latency streaming synthesis
	logger        *slog.Logger
}

// NewClient creates the speech provider client.
func NewClient(cfg config.ElevenLabsConfig, logger *slog.Logger) *Client {
	voice := cfg.DefaultVoiceID
	if voice == "" {
		voice = defaultVoiceID
	}
	return &Client{
		// per-call timeouts are applied via context, not the client
		httpClient:    &http.Client{},
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		defaultVoice:  voice,
		timeout:       cfg.Timeout,
		streamTimeout: cfg.StreamTimeout,
		logger:        logger,
	}
}

type synthesisBody struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize requests full-quality audio and returns the complete buffer.
func (c *Client) Synthesize(ctx context.Context, req domain.SynthesisRequest) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, req, "", c.buildBody(req, bufferedModelID, bufferedProfile))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyStatus(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewUpstreamUnavailableError("speech service", err)
	}

	c.logger.Debug("synthesized audio", "bytes", len(audio), "text_len", len(req.Text))
	return audio, nil
}

// SynthesizeStream requests low-latency audio and forwards each chunk as
// it arrives from the provider, without buffering the whole payload.
func (c *Client) SynthesizeStream(ctx context.Context, req domain.SynthesisRequest) (<-chan []byte, <-chan error) {
	audioCh := make(chan []byte, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(audioCh)
		defer close(errCh)

		ctx, cancel := context.WithTimeout(ctx, c.streamTimeout)
		defer cancel()

		resp, err := c.post(ctx, req, "/stream", c.buildBody(req, streamingModelID, streamingProfile))
		if err != nil {
			errCh <- err
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			errCh <- c.classifyStatus(resp)
			return
		}

		buf := make([]byte, 4096)
		for {
			n, rerr := resp.Body.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case audioCh <- chunk:
				case <-ctx.Done():
					return
				}
			}
			if rerr != nil {
				if rerr == io.EOF {
					return
				}
				if ctx.Err() == nil {
					errCh <- domain.NewUpstreamUnavailableError("speech service", rerr)
				}
				return
			}
		}
	}()

	return audioCh, errCh
}

// buildBody applies the per-path defaults, honoring caller overrides.
func (c *Client) buildBody(req domain.SynthesisRequest, modelID string, profile voiceSettings) synthesisBody {
	if req.ModelID != "" {
		modelID = req.ModelID
	}
	if req.VoiceSettings != nil {
		profile = voiceSettings{
			Stability:       req.VoiceSettings.Stability,
			SimilarityBoost: req.VoiceSettings.SimilarityBoost,
			Style:           req.VoiceSettings.Style,
			UseSpeakerBoost: req.VoiceSettings.UseSpeakerBoost,
		}
	}
	return synthesisBody{
		Text:          req.Text,
		ModelID:       modelID,
		VoiceSettings: profile,
	}
}

func (c *Client) post(ctx context.Context, req domain.SynthesisRequest, suffix string, body synthesisBody) (*http.Response, error) {
	u, err := url.Parse(c.baseURL + "/v1/text-to-speech/" + c.voiceOrDefault(req.VoiceID) + suffix)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	q := u.Query()
	if req.OutputFormat != "" {
		q.Set("output_format", req.OutputFormat)
	}
	if suffix == "/stream" {
		latency := "2"
		if req.OptimizeStreamingLatency != nil {
			latency = fmt.Sprintf("%d", *req.OptimizeStreamingLatency)
		}
		q.Set("optimize_streaming_latency", latency)
	}
	u.RawQuery = q.Encode()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	httpReq.Header.Set("xi-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewUpstreamUnavailableError("speech service", err)
	}
	return resp, nil
}

func (c *Client) voiceOrDefault(voiceID string) string {
	if voiceID == "" {
		return c.defaultVoice
	}
	return voiceID
}

// classifyStatus maps provider failures onto the domain taxonomy.
// Credential and rate-limit failures stay distinct because the caller
// can act on them; everything else collapses to a generic failure.
func (c *Client) classifyStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.logger.Error("speech provider error",
		"status", resp.StatusCode,
		"body", string(body),
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domain.NewUpstreamAuthError("speech service")
	case http.StatusTooManyRequests:
		return domain.NewUpstreamRateLimitError("speech service")
	default:
		return domain.NewUpstreamUnavailableError("speech service", fmt.Errorf("status %d", resp.StatusCode))
	}
}
