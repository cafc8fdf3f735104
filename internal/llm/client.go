package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Client wraps a Provider with a bounded attempt count, a fixed per-attempt
// timeout and fixed backoff between attempts. Retries are local to a single
// call and invisible to concurrent callers.
type Client struct {
	provider Provider
	attempts int
	timeout  time.Duration
	backoff  time.Duration
}

// NewClient creates a retrying client around a provider.
func NewClient(provider Provider, attempts int, timeout, backoff time.Duration) *Client {
	if attempts < 1 {
		attempts = 1
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		provider: provider,
		attempts: attempts,
		timeout:  timeout,
		backoff:  backoff,
	}
}

// Name returns the underlying provider name.
func (c *Client) Name() string {
	return c.provider.Name()
}

// Generate calls the provider, retrying transport failures up to the
// configured attempt count.
func (c *Client) Generate(ctx context.Context, prompt, system string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		text, err := c.provider.Generate(attemptCtx, prompt, system)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		log.Warn().
			Err(err).
			Str("provider", c.provider.Name()).
			Int("attempt", attempt).
			Msg("generation attempt failed")

		if attempt < c.attempts {
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("generation failed after %d attempts: %w", c.attempts, lastErr)
}

// GenerateStream streams a completion. Streaming is not retried: a partial
// stream cannot be transparently restarted, so the first failure is final.
func (c *Client) GenerateStream(ctx context.Context, prompt, system string, fn StreamFunc) error {
	return c.provider.GenerateStream(ctx, prompt, system, fn)
}
