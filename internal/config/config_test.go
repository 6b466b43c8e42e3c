package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
server:
  host: 0.0.0.0
  port: 8080
  mode: release
log:
  level: info
  format: json
openai:
  api_key: sk-test
elevenlabs:
  api_key: el-test
database:
  host: localhost
  port: 3306
  user: tutor
  password: secret
  database: tutor
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.OpenAI.BaseURL != "https://api.openai.com/v1" {
		t.Errorf("openai base url = %s", cfg.OpenAI.BaseURL)
	}
	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("openai model = %s", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.Timeout != 30*time.Second {
		t.Errorf("openai timeout = %s", cfg.OpenAI.Timeout)
	}
	if cfg.ElevenLabs.Timeout != 30*time.Second || cfg.ElevenLabs.StreamTimeout != 15*time.Second {
		t.Errorf("elevenlabs timeouts = %s/%s", cfg.ElevenLabs.Timeout, cfg.ElevenLabs.StreamTimeout)
	}
	if cfg.GetServerAddr() != "0.0.0.0:8080" {
		t.Errorf("server addr = %s", cfg.GetServerAddr())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantMsg string
	}{
		{
			"missing openai key",
			func(c string) string { return strings.Replace(c, "api_key: sk-test", "api_key: \"\"", 1) },
			"openai.api_key",
		},
		{
			"missing elevenlabs key",
			func(c string) string { return strings.Replace(c, "api_key: el-test", "api_key: \"\"", 1) },
			"elevenlabs.api_key",
		},
		{
			"bad port",
			func(c string) string { return strings.Replace(c, "port: 8080", "port: 0", 1) },
			"server port",
		},
		{
			"bad mode",
			func(c string) string { return strings.Replace(c, "mode: release", "mode: production", 1) },
			"server mode",
		},
		{
			"bad log level",
			func(c string) string { return strings.Replace(c, "level: info", "level: verbose", 1) },
			"log level",
		},
		{
			"bad log format",
			func(c string) string { return strings.Replace(c, "format: json", "format: xml", 1) },
			"log format",
		},
		{
			"missing database host",
			func(c string) string { return strings.Replace(c, "host: localhost", "host: \"\"", 1) },
			"database.host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.mutate(validYAML)))
			if err == nil {
				t.Fatal("Load succeeded with invalid config")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded with a missing config file")
	}
}
