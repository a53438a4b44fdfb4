package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OpenAIConfig holds settings for an OpenAI-compatible chat completion
// endpoint. Headers carries provider-specific extras (OpenRouter wants
// HTTP-Referer and X-Title for request attribution).
type OpenAIConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Headers map[string]string
}

// OpenAIClient speaks the OpenAI chat/completions wire format, which both
// OpenAI and OpenRouter serve.
type OpenAIClient struct {
	name       string
	baseURL    string
	apiKey     string
	headers    map[string]string
	httpClient *http.Client
}

func NewOpenAIClient(cfg *OpenAIConfig) (*OpenAIClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	name := cfg.Name
	if name == "" {
		name = "openai"
	}
	return &OpenAIClient{
		name:    name,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		headers: cfg.Headers,
		// Per-attempt deadlines come from the caller's context.
		httpClient: &http.Client{},
	}, nil
}

func (c *OpenAIClient) Name() string {
	return c.name
}

// Complete sends one chat completion request. HTTP and decode failures come
// back as *ProviderError so the gateway can tell transient from permanent.
func (c *OpenAIClient) Complete(ctx context.Context, req *Request) (*Response, error) {
	wireReq := chatRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	body, err := json.Marshal(wireReq)
	if err != nil {
		return nil, &ProviderError{Provider: c.name, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Provider: c.name, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: c.name, Transient: true, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{
			Provider:  c.name,
			Status:    resp.StatusCode,
			Transient: transientStatus(resp.StatusCode),
			Err:       fmt.Errorf("%s", string(b)),
		}
	}

	var wireResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&wireResp); err != nil {
		return nil, &ProviderError{Provider: c.name, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(wireResp.Choices) == 0 {
		return nil, &ProviderError{Provider: c.name, Err: fmt.Errorf("no choices in response")}
	}

	model := wireResp.Model
	if model == "" {
		model = req.Model
	}
	return &Response{
		Content:      wireResp.Choices[0].Message.Content,
		Model:        model,
		Provider:     c.name,
		InputTokens:  wireResp.Usage.PromptTokens,
		OutputTokens: wireResp.Usage.CompletionTokens,
	}, nil
}

// chatRequest represents an OpenAI-compatible API request.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// chatResponse represents an OpenAI-compatible API response.
type chatResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
