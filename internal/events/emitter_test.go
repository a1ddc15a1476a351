package events_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/events"
	"github.com/studygen/studygen-api/internal/mocks"
)

// recordingHandler captures every event it receives.
type recordingHandler struct {
	events []*events.ResultEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *events.ResultEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func passingResult(t *testing.T) *domain.GenerationResult {
	t.Helper()

	req, err := domain.NewContentRequest("Photosynthesis", domain.ContentTypeSummary, domain.AudienceHighSchool, "")
	require.NoError(t, err)

	content := &domain.NormalizedContent{
		ContentType: domain.ContentTypeSummary,
		Fields: map[string]domain.FieldValue{
			"summary":    domain.TextValue("Plants convert light to energy."),
			"key_points": domain.ListValue([]string{"light", "energy"}),
		},
		Provider:    "test-provider",
		GeneratedAt: time.Now().UTC(),
	}

	result, err := domain.NewGenerationResult(
		req,
		content,
		&domain.QualityScore{Dimensions: map[string]float64{"d": 0.9}, Aggregate: 0.9, Passed: true},
		[]domain.GenerationAttempt{{Provider: "test-provider", Outcome: domain.AttemptSuccess}},
		false,
	)
	require.NoError(t, err)
	return result
}

func TestNewResultEventType(t *testing.T) {
	t.Parallel()

	accepted := events.NewResultEvent(passingResult(t))
	assert.Equal(t, events.EventResultAccepted, accepted.Type)

	bestEffort := passingResult(t)
	bestEffort.Score.Passed = false
	bestEffort.BestEffort = true
	assert.Equal(t, events.EventResultBestEffort, events.NewResultEvent(bestEffort).Type)
}

func TestEmitEventDeliversToAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(slog.Default())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event := events.NewResultEvent(passingResult(t))
	err := emitter.EmitEvent(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.Equal(t, event.ID, first.events[0].ID)
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(slog.Default())
	failing := &recordingHandler{err: errors.New("storage down")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	err := emitter.EmitEvent(context.Background(), events.NewResultEvent(passingResult(t)))

	assert.Error(t, err)
	assert.Len(t, healthy.events, 1, "later handlers still receive the event")
}

func TestEmitEventNoHandlers(t *testing.T) {
	t.Parallel()

	emitter := events.NewInMemoryEventEmitter(slog.Default())
	assert.NoError(t, emitter.EmitEvent(context.Background(), events.NewResultEvent(passingResult(t))))
}

func TestStoreHandlerSavesResult(t *testing.T) {
	t.Parallel()

	resultStore := &mocks.ResultStore{}
	handler := events.NewStoreHandler(resultStore, slog.Default())

	result := passingResult(t)
	err := handler.HandleEvent(context.Background(), events.NewResultEvent(result))

	require.NoError(t, err)
	saved := resultStore.Saved()
	require.Len(t, saved, 1)
	assert.Equal(t, result.ID, saved[0].ID)
}

func TestStoreHandlerReturnsSaveError(t *testing.T) {
	t.Parallel()

	saveErr := errors.New("connection refused")
	resultStore := &mocks.ResultStore{
		SaveFn: func(context.Context, *domain.GenerationResult) error { return saveErr },
	}
	handler := events.NewStoreHandler(resultStore, slog.Default())

	err := handler.HandleEvent(context.Background(), events.NewResultEvent(passingResult(t)))
	assert.ErrorIs(t, err, saveErr)
}
