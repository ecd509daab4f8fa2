package catalog

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Dakoina/CalibreBookGrid/internal/errors"
	"github.com/Dakoina/CalibreBookGrid/internal/ratelimit"
)

const maxBackoff = 10 * time.Second

func (l *Loader) fetch(ctx context.Context, source string) (json.RawMessage, error) {
	attempts := l.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := l.fetchOnce(ctx, source)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !errors.IsRetryable(err) || attempt == attempts {
			break
		}

		delay := l.backoffFor(attempt, err)
		slog.Warn("Catalog fetch failed, retrying", "source", source, "attempt", attempt, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}

func (l *Loader) fetchOnce(ctx context.Context, source string) (json.RawMessage, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}
	if lim := l.limiter(u.Host); !lim.Allow() {
		slog.Debug("Waiting for rate limit", "host", u.Host)
		if err := lim.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errors.NewRateLimitErrorWithRetry(
			fmt.Sprintf("rate limited by %s", u.Host), retryAfter(resp.Header.Get("Retry-After")))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errors.NewFetchError(source, resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON from %s", source)
	}
	return data, nil
}

func (l *Loader) client() HTTPDoer {
	if l.httpClient == nil {
		l.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return l.httpClient
}

func (l *Loader) limiter(host string) *ratelimit.Limiter {
	if l.limiters == nil {
		l.limiters = ratelimit.NewHosts(defaultRatePerSecond)
	}
	return l.limiters.For(host)
}

func (l *Loader) backoffFor(attempt int, err error) time.Duration {
	if l.backoff != nil {
		return l.backoff(attempt, err)
	}
	return backoffDelay(attempt, err)
}

// backoffDelay doubles from one second, or honours Retry-After, capped at
// maxBackoff.
func backoffDelay(attempt int, err error) time.Duration {
	delay := time.Duration(1<<uint(attempt-1)) * time.Second

	var rl *errors.RateLimitError
	if stdErrors.As(err, &rl) && rl.RetryAfter > 0 {
		delay = rl.RetryAfter
	}
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

// retryAfter parses the delay-seconds or HTTP-date form.
func retryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
