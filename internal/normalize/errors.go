package normalize

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is the sentinel every normalization failure wraps, so
// callers can branch with errors.Is regardless of which field failed.
var ErrSchemaMismatch = errors.New("response does not match expected schema")

// SchemaMismatchError reports which schema field could not be extracted and
// why. A missing required field is always a SchemaMismatchError, never a
// partial success with empty defaults.
type SchemaMismatchError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: field %q: %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrSchemaMismatch) hold.
func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}

func mismatch(field, format string, args ...any) *SchemaMismatchError {
	return &SchemaMismatchError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
