package orchestrator

import (
	"fmt"

	"github.com/studygen/studygen-api/internal/domain"
)

// GenerationError tags a terminal pipeline failure with the attempt trail
// accumulated before it, so callers get diagnostics even when no result is
// returned. Unwrap exposes the underlying cause for errors.Is/errors.As.
type GenerationError struct {
	Attempts []domain.GenerationAttempt
	Err      error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", len(e.Attempts), e.Err)
}

// Unwrap returns the underlying cause.
func (e *GenerationError) Unwrap() error {
	return e.Err
}
