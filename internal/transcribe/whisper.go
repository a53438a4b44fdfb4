package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/voicehub/voice-gateway/internal/diarize"
)

// WhisperConfig holds settings for the speech-to-text provider.
type WhisperConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
	Prompt   string
	Timeout  time.Duration
}

// WhisperClient calls an OpenAI-compatible audio transcription endpoint and
// requests verbose output so segment timestamps come back with the text.
type WhisperClient struct {
	baseURL    string
	apiKey     string
	model      string
	language   string
	prompt     string
	httpClient *http.Client
}

// ProviderResponse mirrors the provider's verbose_json transcription payload.
type ProviderResponse struct {
	Text     string            `json:"text"`
	Language string            `json:"language"`
	Duration float64           `json:"duration"`
	Segments []diarize.Segment `json:"segments"`
}

func NewWhisperClient(cfg *WhisperConfig) (*WhisperClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &WhisperClient{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		language:   cfg.Language,
		prompt:     cfg.Prompt,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Transcribe uploads the audio as multipart form data and decodes the
// verbose response. Errors are returned as-is; retrying an audio upload is
// the caller's decision.
func (c *WhisperClient) Transcribe(ctx context.Context, data []byte, filename string) (*ProviderResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"model":           c.model,
		"response_format": "verbose_json",
		"language":        c.language,
		"prompt":          c.prompt,
	}
	for name, value := range fields {
		if value == "" {
			continue
		}
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
	}

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	url := c.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("transcription API returned status %d: %s", resp.StatusCode, string(b))
	}

	var vr ProviderResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, fmt.Errorf("failed to decode transcription response: %w", err)
	}
	return &vr, nil
}
