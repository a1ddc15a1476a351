package generation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when an adapter's configuration is invalid.
var ErrInvalidConfig = errors.New("invalid provider configuration")

// FailureClass categorizes a provider failure for the fallback router's
// retry decisions.
type FailureClass string

// Failure classes, in the order the router cares about them.
const (
	// FailureRateLimited is retryable once on the same provider after the
	// suggested backoff.
	FailureRateLimited FailureClass = "rate_limited"

	// FailureAuth is non-retryable for this provider; fall back immediately.
	FailureAuth FailureClass = "auth"

	// FailureTimeout is retryable once immediately, then fall back.
	FailureTimeout FailureClass = "timeout"

	// FailureUnavailable means the backend could not be reached or returned
	// a server error; fall back immediately.
	FailureUnavailable FailureClass = "unavailable"

	// FailureMalformed means the backend answered but unusably (blocked,
	// empty, or garbled output); fall back immediately.
	FailureMalformed FailureClass = "malformed"
)

// ProviderError is the normalized failure every adapter returns. It carries
// the provider id, the failure class, and (for rate limits) the backend's
// suggested backoff.
type ProviderError struct {
	Provider   string
	Class      FailureClass
	RetryAfter time.Duration
	Err        error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Class, e.Err)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Class)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError builds a ProviderError for the given provider and class.
func NewProviderError(provider string, class FailureClass, err error) *ProviderError {
	return &ProviderError{Provider: provider, Class: class, Err: err}
}

// NewRateLimitError builds a rate-limited ProviderError carrying the
// backend's suggested backoff.
func NewRateLimitError(provider string, retryAfter time.Duration, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Class:      FailureRateLimited,
		RetryAfter: retryAfter,
		Err:        err,
	}
}

// ClassifyError extracts the failure class from an adapter error. Errors that
// are not ProviderError values are treated as unavailable, so a misbehaving
// adapter still triggers clean fallback rather than an unbounded retry.
func ClassifyError(err error) FailureClass {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr.Class
	}
	return FailureUnavailable
}
