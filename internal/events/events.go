package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/studygen/studygen-api/internal/domain"
)

// Event types for finished generation results.
const (
	// EventResultAccepted marks a result whose quality score passed.
	EventResultAccepted = "result.accepted"

	// EventResultBestEffort marks a result returned despite a failing
	// score, explicitly flagged as best-effort.
	EventResultBestEffort = "result.best_effort"
)

// ResultEvent announces a finished generation result. It carries the result
// directly; handlers must treat it as read-only.
type ResultEvent struct {
	// ID is a unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// Type is EventResultAccepted or EventResultBestEffort.
	Type string `json:"type"`

	// Result is the finished generation result.
	Result *domain.GenerationResult `json:"result"`

	// CreatedAt is the timestamp when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewResultEvent creates a ResultEvent for a finished result, deriving the
// event type from the result's best-effort flag.
func NewResultEvent(result *domain.GenerationResult) *ResultEvent {
	eventType := EventResultAccepted
	if result.BestEffort {
		eventType = EventResultBestEffort
	}

	return &ResultEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Result:    result,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle result
// events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ResultEvent) error
}

// EventEmitter defines an interface for components that can emit result
// events. This allows the pipeline to publish events without direct
// knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ResultEvent) error
}
