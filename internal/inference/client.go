// Package inference sends chat-style prompts to remote language-model
// providers. A Gateway fronts an ordered provider list with bounded retries
// per provider and fallback to the next provider when one is exhausted.
package inference

import (
	"context"
	"errors"
	"fmt"
)

// Chat roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Client is the interface for completion providers.
type Client interface {
	Complete(ctx context.Context, req *Request) (*Response, error)
	Name() string
}

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a completion request.
type Request struct {
	Messages    []Message
	Model       string
	Temperature float64
	MaxTokens   int
}

// Response represents a completion response.
type Response struct {
	Content      string
	Model        string
	Provider     string
	InputTokens  int
	OutputTokens int
}

// TotalTokens returns the combined token usage, when reported.
func (r *Response) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// ProviderError is a failed provider call. Transient errors (timeout,
// connection failure, rate limit, 5xx) are worth retrying on the same
// provider; permanent ones abort it immediately.
type ProviderError struct {
	Provider  string
	Status    int
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider %s returned status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// retriable reports whether the gateway should try the same provider again.
func retriable(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Transient
	}
	// Timeouts and connection errors arrive as plain transport errors.
	return true
}

// transientStatus classifies an HTTP status for retry purposes: rate limits
// and server errors are transient, every other non-2xx is permanent.
func transientStatus(status int) bool {
	return status == 429 || status >= 500
}
