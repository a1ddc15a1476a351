package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/normalize"
	"github.com/studygen/studygen-api/internal/provider"
)

// stubGenerator implements ContentGenerator with scripted behavior.
type stubGenerator struct {
	result *domain.GenerationResult
	err    error
	gotReq *domain.ContentRequest
}

func (s *stubGenerator) Generate(
	ctx context.Context,
	req *domain.ContentRequest,
) (*domain.GenerationResult, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func acceptedResult(t *testing.T) *domain.GenerationResult {
	t.Helper()

	req, err := domain.NewContentRequest(
		"photosynthesis",
		domain.ContentTypeSummary,
		domain.AudienceHighSchool,
		"",
	)
	require.NoError(t, err)

	content := &domain.NormalizedContent{
		ContentType: domain.ContentTypeSummary,
		Fields: map[string]domain.FieldValue{
			"summary":    domain.TextValue("Plants convert light into chemical energy."),
			"key_points": domain.ListValue([]string{"chlorophyll", "glucose"}),
		},
		Provider:    "gemini-pro",
		GeneratedAt: time.Now().UTC(),
	}
	score := &domain.QualityScore{
		Dimensions: map[string]float64{"topic_relevance": 0.9},
		Aggregate:  0.9,
		Passed:     true,
	}
	attempts := []domain.GenerationAttempt{
		{Provider: "gemini-pro", Outcome: domain.AttemptSuccess, Latency: 120 * time.Millisecond},
	}

	result, err := domain.NewGenerationResult(req, content, score, attempts, false)
	require.NoError(t, err)
	return result
}

func postGenerate(t *testing.T, handler *GenerateHandler, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.Generate(w, req)
	return w
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"content_type": "summary",
		"topic":        "photosynthesis",
		"audience":     "high_school",
	}
}

func TestGenerateHandler_Success(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{result: acceptedResult(t)}
	handler := NewGenerateHandler(gen, time.Minute)

	w := postGenerate(t, handler, validPayload())
	require.Equal(t, http.StatusOK, w.Code)

	var resp ResultResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "summary", resp.ContentType)
	assert.Equal(t, "photosynthesis", resp.Topic)
	assert.Equal(t, "gemini-pro", resp.Provider)
	assert.True(t, resp.Score.Passed)
	assert.False(t, resp.BestEffort)
	require.Len(t, resp.Attempts, 1)
	assert.Equal(t, "success", resp.Attempts[0].Outcome)
	assert.Contains(t, resp.Fields, "summary")

	require.NotNil(t, gen.gotReq)
	assert.Equal(t, domain.ContentTypeSummary, gen.gotReq.ContentType)
	assert.Equal(t, "photosynthesis", gen.gotReq.Topic)
}

func TestGenerateHandler_RequestDeadlineApplied(t *testing.T) {
	t.Parallel()

	result := acceptedResult(t)
	var hadDeadline bool
	gen := &deadlineProbe{result: result, sawDeadline: &hadDeadline}
	handler := NewGenerateHandler(gen, time.Minute)

	w := postGenerate(t, handler, validPayload())
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, hadDeadline)
}

type deadlineProbe struct {
	result      *domain.GenerationResult
	sawDeadline *bool
}

func (p *deadlineProbe) Generate(
	ctx context.Context,
	req *domain.ContentRequest,
) (*domain.GenerationResult, error) {
	_, ok := ctx.Deadline()
	*p.sawDeadline = ok
	return p.result, nil
}

func TestGenerateHandler_NoRequestLogger(t *testing.T) {
	t.Parallel()

	// A request whose context carries no logger must still be served.
	gen := &stubGenerator{result: acceptedResult(t)}
	handler := NewGenerateHandler(gen, time.Minute)

	body, err := json.Marshal(validPayload())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateHandler_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{
			name: "missing topic",
			payload: map[string]interface{}{
				"content_type": "summary",
				"audience":     "high_school",
			},
		},
		{
			name: "missing content type",
			payload: map[string]interface{}{
				"topic":    "photosynthesis",
				"audience": "high_school",
			},
		},
		{
			name: "unknown content type",
			payload: map[string]interface{}{
				"content_type": "sonnet",
				"topic":        "photosynthesis",
				"audience":     "high_school",
			},
		},
		{
			name: "unknown audience",
			payload: map[string]interface{}{
				"content_type": "summary",
				"topic":        "photosynthesis",
				"audience":     "toddlers",
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := &stubGenerator{result: acceptedResult(t)}
			handler := NewGenerateHandler(gen, time.Minute)

			w := postGenerate(t, handler, tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, gen.gotReq)
		})
	}
}

func TestGenerateHandler_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "all providers exhausted",
			err:        &provider.ExhaustedError{},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "schema never satisfied",
			err:        normalize.ErrSchemaMismatch,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "cancelled mid-generation",
			err:        &provider.CancelledError{Cause: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewGenerateHandler(&stubGenerator{err: tt.err}, time.Minute)

			w := postGenerate(t, handler, validPayload())
			assert.Equal(t, tt.wantStatus, w.Code)

			resp := struct {
				Error string `json:"error"`
			}{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestGenerateHandler_MalformedBody(t *testing.T) {
	t.Parallel()

	handler := NewGenerateHandler(&stubGenerator{}, time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewReader([]byte("{broken")))
	w := httptest.NewRecorder()
	handler.Generate(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
