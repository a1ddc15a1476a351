package provider

import (
	"errors"
	"fmt"

	"github.com/studygen/studygen-api/internal/domain"
)

// ErrCancelled is returned when the caller's context expires or is cancelled
// while the router still has work in flight.
var ErrCancelled = errors.New("generation cancelled")

// ExhaustedError is returned when every candidate provider has been tried
// and none produced a usable response. It carries the full attempt trail
// for diagnostics.
type ExhaustedError struct {
	Attempts []domain.GenerationAttempt
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all providers exhausted after %d attempts", len(e.Attempts))
}

// CancelledError wraps ErrCancelled with the attempts recorded before the
// caller's deadline or cancellation aborted the chain. The aborted attempt
// itself is recorded with outcome cancelled, never silently dropped.
type CancelledError struct {
	Attempts []domain.GenerationAttempt
	Cause    error
}

// Error implements the error interface.
func (e *CancelledError) Error() string {
	return fmt.Sprintf("generation cancelled after %d attempts: %v", len(e.Attempts), e.Cause)
}

// Unwrap makes errors.Is(err, ErrCancelled) hold for CancelledError values.
func (e *CancelledError) Unwrap() error {
	return ErrCancelled
}
