package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/linguaflow/tutor-apiserver/internal/config"
	"github.com/linguaflow/tutor-apiserver/internal/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.ElevenLabsConfig{
		BaseURL:       baseURL,
		APIKey:        "test-key",
		Timeout:       5 * time.Second,
		StreamTimeout: 5 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSynthesizeBuffered(t *testing.T) {
	audio := []byte("mp3-bytes-here")
	var gotPath, gotKey string
	var gotBody synthesisBody

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).Synthesize(context.Background(), domain.SynthesisRequest{Text: "Hello learner"})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !bytes.Equal(got, audio) {
		t.Errorf("audio = %q, want %q", got, audio)
	}
	if gotPath != "/v1/text-to-speech/"+defaultVoiceID {
		t.Errorf("path = %s, want default voice", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("xi-api-key = %q", gotKey)
	}
	if gotBody.ModelID != bufferedModelID {
		t.Errorf("model = %s, want %s", gotBody.ModelID, bufferedModelID)
	}
	if gotBody.VoiceSettings != bufferedProfile {
		t.Errorf("voice settings = %+v, want buffered profile", gotBody.VoiceSettings)
	}
}

func TestSynthesizeVoiceAndModelOverrides(t *testing.T) {
	var gotPath string
	var gotBody synthesisBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Synthesize(context.Background(), domain.SynthesisRequest{
		Text:    "Hello",
		VoiceID: "custom-voice",
		ModelID: "eleven_turbo_v2",
		VoiceSettings: &domain.VoiceSettings{
			Stability:       0.9,
			SimilarityBoost: 0.1,
		},
	})
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/custom-voice") {
		t.Errorf("path = %s, want custom voice", gotPath)
	}
	if gotBody.ModelID != "eleven_turbo_v2" {
		t.Errorf("model = %s, want override", gotBody.ModelID)
	}
	if gotBody.VoiceSettings.Stability != 0.9 {
		t.Errorf("stability = %v, want caller override", gotBody.VoiceSettings.Stability)
	}
}

func TestSynthesizeErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, domain.IsUpstreamAuth},
		{"rate limited", http.StatusTooManyRequests, domain.IsUpstreamRateLimited},
		{"server error", http.StatusInternalServerError, domain.IsUpstreamUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "provider failure", tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Synthesize(context.Background(), domain.SynthesisRequest{Text: "Hello"})
			if err == nil || !tt.check(err) {
				t.Errorf("got error %v, want status %d mapped", err, tt.status)
			}
		})
	}
}

func TestSynthesizeStream(t *testing.T) {
	var gotPath, gotLatency string
	var gotBody synthesisBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLatency = r.URL.Query().Get("optimize_streaming_latency")
		json.NewDecoder(r.Body).Decode(&gotBody)

		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("chunk-one"))
		flusher.Flush()
		w.Write([]byte("chunk-two"))
		flusher.Flush()
	}))
	defer srv.Close()

	audioCh, errCh := newTestClient(srv.URL).SynthesizeStream(context.Background(), domain.SynthesisRequest{Text: "Hello learner"})

	var received bytes.Buffer
	timeout := time.After(5 * time.Second)
loop:
	for {
		select {
		case chunk, open := <-audioCh:
			if !open {
				break loop
			}
			received.Write(chunk)
		case err, open := <-errCh:
			if open && err != nil {
				t.Fatalf("stream carried error: %v", err)
			}
			errCh = nil
		case <-timeout:
			t.Fatal("timed out reading audio stream")
		}
	}

	if received.String() != "chunk-onechunk-two" {
		t.Errorf("received audio = %q", received.String())
	}
	if !strings.HasSuffix(gotPath, "/stream") {
		t.Errorf("path = %s, want /stream suffix", gotPath)
	}
	if gotLatency != "2" {
		t.Errorf("optimize_streaming_latency = %q, want default 2", gotLatency)
	}
	if gotBody.ModelID != streamingModelID {
		t.Errorf("model = %s, want %s", gotBody.ModelID, streamingModelID)
	}
	if gotBody.VoiceSettings != streamingProfile {
		t.Errorf("voice settings = %+v, want streaming profile", gotBody.VoiceSettings)
	}
}

func TestSynthesizeStreamProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	audioCh, errCh := newTestClient(srv.URL).SynthesizeStream(context.Background(), domain.SynthesisRequest{Text: "Hello"})

	select {
	case err := <-errCh:
		if !domain.IsUpstreamAuth(err) {
			t.Errorf("got error %v, want upstream auth", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for stream error")
	}
	for range audioCh {
		t.Error("received audio on the failure path")
	}
}

func TestSynthesizeStreamLatencyOverride(t *testing.T) {
	var gotLatency string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLatency = r.URL.Query().Get("optimize_streaming_latency")
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	latency := 4
	audioCh, errCh := newTestClient(srv.URL).SynthesizeStream(context.Background(), domain.SynthesisRequest{
		Text:                     "Hello",
		OptimizeStreamingLatency: &latency,
	})
	for range audioCh {
	}
	if err := <-errCh; err != nil {
		t.Fatalf("stream carried error: %v", err)
	}
	if gotLatency != "4" {
		t.Errorf("optimize_streaming_latency = %q, want 4", gotLatency)
	}
}
