// Package scholar queries external academic search services and routes
// between them by research domain.
package scholar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mikiiiss/research-assistant/internal/domain"
)

// Provider searches a single external academic service.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]domain.Paper, error)
}

// doWithRetry issues the request, retrying transient failures with a fixed
// backoff. The caller owns the response body on success.
func doWithRetry(ctx context.Context, client *http.Client, build func() (*http.Request, error), retries int, backoff time.Duration) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := build()
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt+1).Str("url", req.URL.Host).Msg("scholar request failed")
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt+1).Str("url", req.URL.Host).Msg("scholar request rejected")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return resp, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", retries+1, lastErr)
}
