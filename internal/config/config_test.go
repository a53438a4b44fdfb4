package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
channels:
  telegram:
    enabled: true
    token: tg-token
transcription:
  api_key: sk-whisper
completion:
  primary:
    api_key: sk-router
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Completion.Model != "openai/gpt-4o-mini" {
		t.Errorf("unexpected default model: %s", cfg.Completion.Model)
	}
	if got := cfg.Completion.GetTemperature(); got != 0.2 {
		t.Errorf("unexpected default temperature: %v", got)
	}
	if cfg.Completion.MaxRetries != 3 {
		t.Errorf("unexpected default retries: %d", cfg.Completion.MaxRetries)
	}
	if got := cfg.Completion.GetTimeout(); got != 30*time.Second {
		t.Errorf("unexpected default timeout: %v", got)
	}
	if got := cfg.Completion.GetRetryDelay(); got != time.Second {
		t.Errorf("unexpected default retry delay: %v", got)
	}
	if cfg.Limits.MaxAudioBytes() != 20*1024*1024 {
		t.Errorf("unexpected audio ceiling: %d", cfg.Limits.MaxAudioBytes())
	}
	if cfg.Limits.MaxTextLength != 4000 || cfg.Limits.MaxMessageLength != 4000 {
		t.Errorf("unexpected text limits: %+v", cfg.Limits)
	}
	if cfg.Diarization.PauseThreshold != 2.0 {
		t.Errorf("unexpected pause threshold: %v", cfg.Diarization.PauseThreshold)
	}
	if cfg.Completion.Primary.Name != "openrouter" || cfg.Completion.Secondary.Name != "openai" {
		t.Errorf("unexpected provider names: %+v", cfg.Completion)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestExplicitZeroTemperatureSurvives(t *testing.T) {
	path := writeConfig(t, `
channels:
  telegram:
    enabled: true
    token: tg-token
transcription:
  api_key: sk-whisper
completion:
  primary:
    api_key: sk-router
  temperature: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.Completion.GetTemperature(); got != 0 {
		t.Errorf("explicit temperature 0 was replaced with %v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-tg")
	t.Setenv("OPENROUTER_API_KEY", "env-router")
	t.Setenv("OPENAI_API_KEY", "env-openai")

	path := writeConfig(t, `
channels:
  telegram:
    enabled: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Channels.Telegram.Token != "env-tg" {
		t.Errorf("telegram token not overridden: %q", cfg.Channels.Telegram.Token)
	}
	if cfg.Completion.Primary.APIKey != "env-router" {
		t.Errorf("primary key not overridden: %q", cfg.Completion.Primary.APIKey)
	}
	if cfg.Transcription.APIKey != "env-openai" {
		t.Errorf("transcription key not filled from env: %q", cfg.Transcription.APIKey)
	}
	if cfg.Completion.Secondary.APIKey != "env-openai" {
		t.Errorf("secondary key not filled from env: %q", cfg.Completion.Secondary.APIKey)
	}
}

func TestValidateRejectsMisconfiguration(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no channel", `
transcription:
  api_key: k
completion:
  primary:
    api_key: k
`},
		{"telegram without token", `
channels:
  telegram:
    enabled: true
transcription:
  api_key: k
completion:
  primary:
    api_key: k
`},
		{"no transcription key", `
channels:
  telegram:
    enabled: true
    token: t
completion:
  primary:
    api_key: k
`},
		{"no completion provider", `
channels:
  telegram:
    enabled: true
    token: t
transcription:
  api_key: k
`},
		{"secondary only with fallback disabled", `
channels:
  telegram:
    enabled: true
    token: t
transcription:
  api_key: k
completion:
  secondary:
    api_key: k
  fallback_enabled: false
`},
	}

	// Neutralize any ambient secrets so overrides stay out of this test.
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("DISCORD_BOT_TOKEN", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tc.yaml))
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
