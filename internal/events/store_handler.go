package events

import (
	"context"
	"log/slog"

	"github.com/studygen/studygen-api/internal/store"
)

// StoreHandler persists finished results to a ResultStore. It is the
// standard handler wired when persistence is configured.
type StoreHandler struct {
	results store.ResultStore
	logger  *slog.Logger
}

// NewStoreHandler creates a handler that saves every result event to the
// given store.
func NewStoreHandler(results store.ResultStore, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		results: results,
		logger:  logger.With("component", "result_store_handler"),
	}
}

var _ EventHandler = (*StoreHandler)(nil)

// HandleEvent saves the event's result. The returned error is for the
// emitter's log only; persistence failures never fail a generation request.
func (h *StoreHandler) HandleEvent(ctx context.Context, event *ResultEvent) error {
	if err := h.results.Save(ctx, event.Result); err != nil {
		return err
	}

	h.logger.DebugContext(ctx, "result persisted",
		slog.String("result_id", event.Result.ID.String()),
		slog.String("event_type", event.Type))
	return nil
}
