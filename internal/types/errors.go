package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrTimeout       = errors.New("request timed out")
	ErrMaxRetries    = errors.New("max retries exceeded")
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrNoPayload     = errors.New("no embedded payload found")
	ErrNoProduct     = errors.New("no product node found")
)

// FetchError wraps errors that occur while retrieving a page. StatusCode is
// populated when the transport produced an HTTP status before failing.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ConfigError wraps malformed input records (SKU/store lists). It is fatal:
// a run never starts with bad inputs.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error (%s): %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
