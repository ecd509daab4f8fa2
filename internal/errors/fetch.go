package errors

import (
	stdErrors "errors"
	"fmt"
	"strings"
)

const maxBodySnippet = 200

// FetchError represents a failed catalog fetch (non-2xx response)
type FetchError struct {
	Source     string
	StatusCode int
	Body       string // Start of the response body if any
}

func (e *FetchError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("fetch %s failed (HTTP %d): %s", e.Source, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetch %s failed (HTTP %d)", e.Source, e.StatusCode)
}

// Retryable reports whether the request may succeed if repeated.
func (e *FetchError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 408
}

// NewFetchError creates a new FetchError, trimming the body to a short snippet
func NewFetchError(source string, statusCode int, body string) *FetchError {
	body = strings.Join(strings.Fields(body), " ")
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet] + "..."
	}
	return &FetchError{
		Source:     source,
		StatusCode: statusCode,
		Body:       body,
	}
}

// IsFetchError checks if error is a FetchError
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return stdErrors.As(err, &fetchErr)
}

// IsRetryable reports whether err is worth retrying: rate limits and
// server-side fetch failures are, everything else is not.
func IsRetryable(err error) bool {
	if IsRateLimitError(err) {
		return true
	}
	var fetchErr *FetchError
	if stdErrors.As(err, &fetchErr) {
		return fetchErr.Retryable()
	}
	return false
}
