package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/store"
)

// ResultStore implements store.ResultStore for testing.
type ResultStore struct {
	// SaveFn allows test cases to mock Save behavior; nil records and succeeds.
	SaveFn func(ctx context.Context, result *domain.GenerationResult) error

	mu    sync.Mutex
	saved []*domain.GenerationResult
}

// Save implements store.ResultStore.
func (s *ResultStore) Save(ctx context.Context, result *domain.GenerationResult) error {
	s.mu.Lock()
	s.saved = append(s.saved, result)
	s.mu.Unlock()

	if s.SaveFn != nil {
		return s.SaveFn(ctx, result)
	}
	return nil
}

// GetByID implements store.ResultStore.
func (s *ResultStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, store.ErrResultNotFound
}

// ListRecent implements store.ResultStore.
func (s *ResultStore) ListRecent(ctx context.Context, limit int) ([]*domain.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.saved) {
		limit = len(s.saved)
	}
	out := make([]*domain.GenerationResult, 0, limit)
	for i := len(s.saved) - 1; i >= len(s.saved)-limit; i-- {
		out = append(out, s.saved[i])
	}
	return out, nil
}

// Saved returns a copy of everything saved so far.
func (s *ResultStore) Saved() []*domain.GenerationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.GenerationResult, len(s.saved))
	copy(out, s.saved)
	return out
}
