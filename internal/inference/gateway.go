package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/voicehub/voice-gateway/internal/metrics"
)

// GatewayConfig bounds each completion call.
type GatewayConfig struct {
	// AttemptTimeout caps a single provider attempt.
	AttemptTimeout time.Duration
	// MaxAttempts is the retry budget per provider for transient errors.
	MaxAttempts int
	// RetryDelay is the fixed wait between attempts on the same provider.
	RetryDelay time.Duration
}

// Gateway fronts an ordered list of completion providers. A call walks the
// list: transient failures retry the same provider up to MaxAttempts with a
// fixed delay, permanent failures abort the provider immediately, and either
// way the next provider gets a fresh retry budget. The first success wins.
type Gateway struct {
	providers []Client
	cfg       GatewayConfig
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewGateway(providers []Client, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 30 * time.Second
	}
	return &Gateway{providers: providers, cfg: cfg, logger: logger, sleep: sleepCtx}
}

// Providers returns the names of the configured providers in order.
func (g *Gateway) Providers() []string {
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name()
	}
	return names
}

// Complete runs the request through the provider list. On success the
// response says which provider and model actually served it. On total
// exhaustion the returned error wraps the last failure and names the last
// provider attempted.
func (g *Gateway) Complete(ctx context.Context, req *Request) (*Response, error) {
	if len(g.providers) == 0 {
		return nil, fmt.Errorf("no completion providers configured")
	}

	start := time.Now()
	defer func() {
		metrics.CompletionLatency.Observe(time.Since(start).Seconds())
	}()

	var lastErr error
	for i, provider := range g.providers {
		if i > 0 {
			g.logger.Warn("falling back to next provider", "provider", provider.Name())
			metrics.CompletionFallbacks.Inc()
		}

		resp, err := g.completeWithRetries(ctx, provider, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

// completeWithRetries applies the per-provider retry policy: up to
// MaxAttempts for transient errors, immediate abort for permanent ones. Each
// attempt gets its own timeout; a timed-out attempt's result is discarded.
func (g *Gateway) completeWithRetries(ctx context.Context, provider Client, req *Request) (*Response, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.AttemptTimeout)
		resp, err := provider.Complete(attemptCtx, req)
		cancel()

		if err == nil {
			metrics.CompletionAttempts.WithLabelValues(provider.Name(), "ok").Inc()
			g.logger.Info("completion succeeded",
				"provider", provider.Name(), "model", resp.Model, "attempt", attempt,
				"tokens", resp.TotalTokens())
			return resp, nil
		}

		metrics.CompletionAttempts.WithLabelValues(provider.Name(), "error").Inc()
		lastErr = wrapProviderErr(provider.Name(), err)

		if !retriable(err) {
			g.logger.Error("permanent provider error, aborting provider",
				"provider", provider.Name(), "attempt", attempt, "error", err)
			return nil, lastErr
		}

		g.logger.Warn("transient provider error",
			"provider", provider.Name(), "attempt", attempt, "max_attempts", g.cfg.MaxAttempts, "error", err)

		if attempt < g.cfg.MaxAttempts {
			if err := g.sleep(ctx, g.cfg.RetryDelay); err != nil {
				return nil, lastErr
			}
		}
	}
	return nil, lastErr
}

// wrapProviderErr guarantees the failure carries the provider name even when
// the client returned a bare transport error.
func wrapProviderErr(provider string, err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &ProviderError{Provider: provider, Transient: true, Err: err}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
