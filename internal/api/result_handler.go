package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studygen/studygen-api/internal/api/shared"
	"github.com/studygen/studygen-api/internal/store"
)

const (
	defaultResultListLimit = 20
	maxResultListLimit     = 100
)

// ResultHandler handles retrieval of stored generation results.
type ResultHandler struct {
	results store.ResultStore
}

// NewResultHandler creates a new ResultHandler with the given dependencies.
func NewResultHandler(results store.ResultStore) *ResultHandler {
	return &ResultHandler{
		results: results,
	}
}

// GetResult handles GET /results/{id}.
func (h *ResultHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid result ID")
		return
	}

	result, err := h.results.GetByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewResultResponse(result))
}

// ListResults handles GET /results. The limit query parameter caps the number
// of results returned, newest first.
func (h *ResultHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	limit := defaultResultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = parsed
	}
	if limit > maxResultListLimit {
		limit = maxResultListLimit
	}

	results, err := h.results.ListRecent(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	responses := make([]ResultResponse, 0, len(results))
	for _, result := range results {
		responses = append(responses, NewResultResponse(result))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
