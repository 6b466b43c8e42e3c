package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/linguaflow/tutor-apiserver/internal/config"
	"github.com/linguaflow/tutor-apiserver/internal/domain"
	"github.com/linguaflow/tutor-apiserver/internal/domain/entity"
)

// Fixed generation parameters for the tutor. The small penalties reduce
// the model's tendency to repeat corrections verbatim.
const (
	maxCompletionTokens = 2000
	temperature         = 0.7
	presencePenalty     = 0.1
	frequencyPenalty    = 0.1
)

// Retry policy for the non-streaming path. The streaming path never
// retries; a fresh provider call is required after any failure.
const (
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 2 * time.Second
)

// Client is the OpenAI chat completion client. It implements
// domain.CompletionStreamer.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *slog.Logger

	// retry knobs, overridable in tests
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewClient creates the completion provider client.
func NewClient(cfg config.OpenAIConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		logger:         logger,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model            string        `json:"model"`
	Messages         []chatMessage `json:"messages"`
	MaxTokens        int           `json:"max_tokens"`
	Temperature      float64       `json:"temperature"`
	PresencePenalty  float64       `json:"presence_penalty"`
	FrequencyPenalty float64       `json:"frequency_penalty"`
	Stream           bool          `json:"stream,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// StreamChatCompletion opens a token-streaming completion and returns a
// channel of text deltas. The provider call happens in the background;
// any provider-side failure, including one before the first token, is
// delivered as a single delta carrying the error, after which the
// channel is closed. The sequence is finite and not restartable.
func (c *Client) StreamChatCompletion(ctx context.Context, messages []entity.PromptMessage) (<-chan entity.TextDelta, error) {
	body, err := json.Marshal(c.buildRequest(messages, true))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	deltaCh := make(chan entity.TextDelta, 100)

	go func() {
		defer close(deltaCh)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			deltaCh <- entity.TextDelta{Err: domain.NewInternalError(err)}
			return
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return // canceled by the caller, nothing to report
			}
			deltaCh <- entity.TextDelta{Err: domain.NewUpstreamUnavailableError("AI service", err)}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			deltaCh <- entity.TextDelta{Err: c.classifyStatus(resp)}
			return
		}

		c.readStream(ctx, resp.Body, deltaCh)
	}()

	return deltaCh, nil
}

// readStream decodes the provider's SSE lines into text deltas until the
// [DONE] marker or a read failure.
func (c *Client) readStream(ctx context.Context, body io.Reader, deltaCh chan<- entity.TextDelta) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			return
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			c.logger.Warn("skipping malformed stream chunk", "error", err)
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			select {
			case deltaCh <- entity.TextDelta{Content: content}:
			case <-ctx.Done():
				return
			}
		}
		if chunk.Choices[0].FinishReason != nil {
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		deltaCh <- entity.TextDelta{Err: domain.NewUpstreamUnavailableError("AI service", err)}
	}
}

// CreateChatCompletion is the non-streaming request/response path. It
// retries transient failures up to maxAttempts with exponential backoff
// (2s, 4s, ...). Authentication, rate-limit and bad-request responses
// are terminal and surfaced immediately.
func (c *Client) CreateChatCompletion(ctx context.Context, messages []entity.PromptMessage) (string, error) {
	body, err := json.Marshal(c.buildRequest(messages, false))
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	var lastErr error
	delay := c.retryBaseDelay

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Warn("retrying completion request",
				"attempt", attempt,
				"delay", delay.String(),
				"error", lastErr,
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			delay *= 2
		}

		response, err := c.createOnce(ctx, body)
		if err == nil {
			return response, nil
		}
		if !retryable(err) {
			return "", err
		}
		lastErr = err
	}

	return "", lastErr
}

func (c *Client) createOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", domain.NewInternalError(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewUpstreamUnavailableError("AI service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.classifyStatus(resp)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", domain.NewUpstreamUnavailableError("AI service", err)
	}
	if len(completion.Choices) == 0 {
		return "", domain.NewUpstreamUnavailableError("AI service", errors.New("empty choices"))
	}

	return completion.Choices[0].Message.Content, nil
}

func (c *Client) buildRequest(messages []entity.PromptMessage, stream bool) chatCompletionRequest {
	msgs := make([]chatMessage, len(messages))
	for i, m := range messages {
		msgs[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	return chatCompletionRequest{
		Model:            c.model,
		Messages:         msgs,
		MaxTokens:        maxCompletionTokens,
		Temperature:      temperature,
		PresencePenalty:  presencePenalty,
		FrequencyPenalty: frequencyPenalty,
		Stream:           stream,
	}
}

// classifyStatus maps provider HTTP failures onto the domain taxonomy.
func (c *Client) classifyStatus(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	c.logger.Error("completion provider error",
		"status", resp.StatusCode,
		"body", string(body),
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domain.NewUpstreamAuthError("AI service")
	case http.StatusTooManyRequests:
		return domain.NewUpstreamRateLimitError("AI service")
	case http.StatusBadRequest:
		return domain.NewUpstreamBadRequestError("AI service", "request rejected")
	default:
		return domain.NewUpstreamUnavailableError("AI service", fmt.Errorf("status %d", resp.StatusCode))
	}
}

func retryable(err error) bool {
	return domain.IsUpstreamUnavailable(err)
}
