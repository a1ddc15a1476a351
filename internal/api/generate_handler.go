package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studygen/studygen-api/internal/api/shared"
	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/platform/logger"
)

// ContentGenerator runs the full generation pipeline for a validated request.
// Implemented by orchestrator.Service.
type ContentGenerator interface {
	Generate(ctx context.Context, req *domain.ContentRequest) (*domain.GenerationResult, error)
}

// GenerateHandler handles content generation API requests.
type GenerateHandler struct {
	generator ContentGenerator
	timeout   time.Duration
	validator *validator.Validate
}

// NewGenerateHandler creates a new GenerateHandler. A non-zero timeout bounds
// the whole generation pipeline per request.
func NewGenerateHandler(generator ContentGenerator, timeout time.Duration) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		timeout:   timeout,
		validator: validator.New(),
	}
}

// Generate handles the /generate endpoint.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	contentReq, err := domain.NewContentRequest(
		req.Topic,
		domain.ContentType(req.ContentType),
		domain.Audience(req.Audience),
		req.Requirements,
	)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.generator.Generate(ctx, contentReq)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Info("generation request served",
		"request_id", contentReq.ID,
		"content_type", contentReq.ContentType,
		"provider", result.Content.Provider,
		"aggregate_score", result.Score.Aggregate,
		"best_effort", result.BestEffort,
		"attempts", len(result.Attempts))

	shared.RespondWithJSON(w, r, http.StatusOK, NewResultResponse(result))
}
