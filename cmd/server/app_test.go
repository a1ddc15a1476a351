package main

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
	"golang.org/x/crypto/bcrypt"

	"github.com/studygen/studygen-api/internal/api"
	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/events"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/mocks"
	"github.com/studygen/studygen-api/internal/orchestrator"
	"github.com/studygen/studygen-api/internal/provider"
	"github.com/studygen/studygen-api/internal/service/auth"
	"github.com/studygen/studygen-api/internal/template"
	"github.com/studygen/studygen-api/internal/testutils"
)

const flashcardsJSON = `{"cards": [
	{"key": "What pigment absorbs light?", "value": "Chlorophyll."},
	{"key": "What gas is released?", "value": "Oxygen."}
]}`

// acceptAllScorer passes everything; scoring behavior has its own tests.
type acceptAllScorer struct{}

func (acceptAllScorer) ScoreContent(*domain.NormalizedContent, *domain.ContentRequest) *domain.QualityScore {
	return &domain.QualityScore{
		Dimensions: map[string]float64{"topic_relevance": 0.9},
		Aggregate:  0.9,
		Passed:     true,
	}
}

// newTestApplication wires a full application over scripted providers and an
// in-memory result store, so the whole HTTP surface can be exercised without
// network or database access.
func newTestApplication(t *testing.T) (*application, *mocks.ResultStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("test-api-key"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			LogLevel:       "error",
			RequestTimeout: 30 * time.Second,
		},
		Auth: config.AuthConfig{
			JWTSecret:   "integration-test-secret-key-32chars!",
			TokenExpiry: time.Hour,
			Clients: []config.ClientCredential{
				{ID: "client-alpha", HashedKey: string(hash)},
			},
		},
		Generation: config.GenerationConfig{RateLimitBackoffCap: time.Second},
	}

	logger := testutils.NewTestLogger(t)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	templates, err := template.NewRegistry("")
	require.NoError(t, err)

	primary := mocks.NewScriptedProvider("primary", 1, mocks.Step{Text: flashcardsJSON})
	providers := []generation.Provider{primary}
	table := provider.NewTable(providers)
	router := provider.NewRouter(providers, table, cfg.Generation.RateLimitBackoffCap, logger)

	resultStore := &mocks.ResultStore{}
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(events.NewStoreHandler(resultStore, logger))

	app := &application{
		config:       cfg,
		logger:       logger,
		templates:    templates,
		providers:    providers,
		healthTable:  table,
		router:       router,
		jwtService:   jwtService,
		keyVerifier:  auth.NewBcryptVerifier(),
		resultStore:  resultStore,
		eventEmitter: emitter,
		orchestrator: orchestrator.NewService(templates, router, acceptAllScorer{}, emitter, logger),
	}
	return app, resultStore
}

func obtainToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"client_id": "client-alpha",
		"api_key":   "test-api-key",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", bytes.NewReader(body))
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func TestApplication_TokenAndGenerateFlow(t *testing.T) {
	app, resultStore := newTestApplication(t)
	handler := app.setupRouter()

	token := obtainToken(t, handler)

	body, err := json.Marshal(map[string]string{
		"content_type": "flashcards",
		"topic":        "photosynthesis",
		"audience":     "high_school",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ResultResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "flashcards", resp.ContentType)
	assert.Equal(t, "primary", resp.Provider)
	assert.False(t, resp.BestEffort)
	assert.Contains(t, resp.Fields, "cards")

	// Persistence runs asynchronously after the response is written.
	require.Eventually(t, func() bool {
		return len(resultStore.Saved()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Stored result is readable back through the API.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/results/"+resp.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApplication_GenerateRequiresAuth(t *testing.T) {
	app, _ := newTestApplication(t)
	handler := app.setupRouter()

	body, err := json.Marshal(map[string]string{
		"content_type": "flashcards",
		"topic":        "photosynthesis",
		"audience":     "high_school",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApplication_Healthz(t *testing.T) {
	app, _ := newTestApplication(t)
	handler := app.setupRouter()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp api.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Providers, 1)
	assert.Equal(t, "primary", resp.Providers[0].ID)
}

func TestBuildProviders_UnknownKind(t *testing.T) {
	logger := testutils.NewTestLogger(t)

	_, err := buildProviders(context.Background(), []config.ProviderConfig{
		{ID: "mystery", Kind: "anthropic", APIKey: "k", Model: "m", CallTimeout: time.Second},
	}, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider kind")
}
