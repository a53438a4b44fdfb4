package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the voice gateway.
type Config struct {
	Channels      ChannelsConfig      `yaml:"channels"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Completion    CompletionConfig    `yaml:"completion"`
	Limits        LimitsConfig        `yaml:"limits"`
	Diarization   DiarizationConfig   `yaml:"diarization"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ChannelsConfig defines chat channel settings.
type ChannelsConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Discord  DiscordConfig  `yaml:"discord"`
}

// TelegramConfig defines Telegram channel settings.
type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

// DiscordConfig defines Discord channel settings.
type DiscordConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
}

// TranscriptionConfig defines the speech-to-text provider settings.
type TranscriptionConfig struct {
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Prompt   string `yaml:"prompt,omitempty"`
	Timeout  string `yaml:"timeout,omitempty"`
}

// GetTimeout returns the transcription timeout as a time.Duration.
func (t *TranscriptionConfig) GetTimeout() time.Duration {
	return parseDuration(t.Timeout, 120*time.Second)
}

// ProviderConfig defines one completion provider.
type ProviderConfig struct {
	Name    string            `yaml:"name"`
	BaseURL string            `yaml:"base_url"`
	APIKey  string            `yaml:"api_key"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Configured reports whether the provider has enough settings to be used.
func (p *ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

// CompletionConfig defines the chat model settings and the retry/fallback
// policy of the completion gateway.
type CompletionConfig struct {
	Primary         ProviderConfig `yaml:"primary"`
	Secondary       ProviderConfig `yaml:"secondary"`
	FallbackEnabled bool           `yaml:"fallback_enabled"`
	Model           string         `yaml:"model"`
	Temperature     *float64       `yaml:"temperature,omitempty"`
	MaxTokens       int            `yaml:"max_tokens"`
	Timeout         string         `yaml:"timeout,omitempty"`
	MaxRetries      int            `yaml:"max_retries"`
	RetryDelay      string         `yaml:"retry_delay,omitempty"`
}

// GetTemperature returns the sampling temperature. The field is a pointer
// so an explicit 0 survives; only an absent key falls back to the default.
func (c *CompletionConfig) GetTemperature() float64 {
	if c.Temperature == nil {
		return 0.2
	}
	return *c.Temperature
}

// GetTimeout returns the per-attempt timeout as a time.Duration.
func (c *CompletionConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 30*time.Second)
}

// GetRetryDelay returns the inter-attempt delay as a time.Duration.
func (c *CompletionConfig) GetRetryDelay() time.Duration {
	return parseDuration(c.RetryDelay, time.Second)
}

// LimitsConfig defines payload size ceilings and outbound chunking.
type LimitsConfig struct {
	MaxAudioSizeMB   int `yaml:"max_audio_size_mb"`
	MaxTextLength    int `yaml:"max_text_length"`
	MaxMessageLength int `yaml:"max_message_length"`
}

// MaxAudioBytes converts the audio ceiling to bytes.
func (l *LimitsConfig) MaxAudioBytes() int {
	return l.MaxAudioSizeMB * 1024 * 1024
}

// DiarizationConfig defines the speaker-change heuristic.
type DiarizationConfig struct {
	PauseThreshold float64 `yaml:"pause_threshold_seconds"`
}

// ServerConfig defines the metrics/health HTTP listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig defines logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads the config file, applies defaults and environment overrides
// for secrets (TELEGRAM_BOT_TOKEN, DISCORD_BOT_TOKEN, OPENAI_API_KEY,
// OPENROUTER_API_KEY).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = "https://api.openai.com/v1"
	}
	if c.Transcription.Model == "" {
		c.Transcription.Model = "whisper-1"
	}
	if c.Transcription.Language == "" {
		c.Transcription.Language = "ru"
	}
	if c.Completion.Primary.Name == "" {
		c.Completion.Primary.Name = "openrouter"
	}
	if c.Completion.Primary.BaseURL == "" {
		c.Completion.Primary.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.Completion.Secondary.Name == "" {
		c.Completion.Secondary.Name = "openai"
	}
	if c.Completion.Secondary.BaseURL == "" {
		c.Completion.Secondary.BaseURL = "https://api.openai.com/v1"
	}
	if c.Completion.Model == "" {
		c.Completion.Model = "openai/gpt-4o-mini"
	}
	if c.Completion.MaxTokens == 0 {
		c.Completion.MaxTokens = 1500
	}
	if c.Completion.MaxRetries == 0 {
		c.Completion.MaxRetries = 3
	}
	if c.Limits.MaxAudioSizeMB == 0 {
		c.Limits.MaxAudioSizeMB = 20
	}
	if c.Limits.MaxTextLength == 0 {
		c.Limits.MaxTextLength = 4000
	}
	if c.Limits.MaxMessageLength == 0 {
		c.Limits.MaxMessageLength = 4000
	}
	if c.Diarization.PauseThreshold == 0 {
		c.Diarization.PauseThreshold = 2.0
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Channels.Telegram.Token = v
	}
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		c.Channels.Discord.Token = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		if c.Transcription.APIKey == "" {
			c.Transcription.APIKey = v
		}
		if c.Completion.Secondary.APIKey == "" {
			c.Completion.Secondary.APIKey = v
		}
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.Completion.Primary.APIKey = v
	}
}

// Validate checks that the config can actually run a gateway.
func (c *Config) Validate() error {
	if !c.Channels.Telegram.Enabled && !c.Channels.Discord.Enabled {
		return fmt.Errorf("no channel enabled")
	}
	if c.Channels.Telegram.Enabled && c.Channels.Telegram.Token == "" {
		return fmt.Errorf("telegram channel enabled but token is missing")
	}
	if c.Channels.Discord.Enabled && c.Channels.Discord.Token == "" {
		return fmt.Errorf("discord channel enabled but token is missing")
	}
	if c.Transcription.APIKey == "" {
		return fmt.Errorf("transcription API key is missing")
	}
	if !c.Completion.Primary.Configured() && !c.Completion.Secondary.Configured() {
		return fmt.Errorf("no completion provider configured")
	}
	if !c.Completion.Primary.Configured() && !c.FallbackAllowed() {
		return fmt.Errorf("primary completion provider is required when fallback is disabled")
	}
	return nil
}

// FallbackAllowed reports whether the secondary provider may be used.
func (c *Config) FallbackAllowed() bool {
	return c.Completion.FallbackEnabled && c.Completion.Secondary.Configured()
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
