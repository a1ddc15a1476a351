package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/studygen/studygen-api/internal/domain"
)

// ResultStore defines the interface for generation result persistence.
// The pipeline hands finished results to an implementation asynchronously;
// a Save failure is logged by the caller, never surfaced to the requester.
type ResultStore interface {
	// Save persists a completed generation result, including its normalized
	// content, quality score, and attempt trail.
	// Returns ErrDuplicate if a result with the same ID already exists.
	Save(ctx context.Context, result *domain.GenerationResult) error

	// GetByID retrieves a generation result by its unique ID.
	// Returns ErrResultNotFound if the result does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationResult, error)

	// ListRecent returns up to limit results ordered by creation time,
	// newest first.
	ListRecent(ctx context.Context, limit int) ([]*domain.GenerationResult, error)
}
