package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/studygen/studygen-api/internal/domain"
)

// Common request/response structures

// TokenRequest defines the payload for the client token endpoint.
type TokenRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	APIKey   string `json:"api_key"   validate:"required"`
}

// TokenResponse defines the successful response for the token endpoint.
type TokenResponse struct {
	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"access_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// GenerateRequest defines the payload for the content generation endpoint.
type GenerateRequest struct {
	ContentType  string `json:"content_type" validate:"required"`
	Topic        string `json:"topic"        validate:"required,max=500"`
	Audience     string `json:"audience"     validate:"required"`
	Requirements string `json:"requirements" validate:"max=2000"`
}

// AttemptSummary is the client-facing view of one provider attempt.
type AttemptSummary struct {
	Provider   string `json:"provider"`
	Outcome    string `json:"outcome"`
	ErrorClass string `json:"error_class,omitempty"`
	LatencyMS  int64  `json:"latency_ms"`
}

// ScoreResponse is the client-facing view of a quality assessment.
type ScoreResponse struct {
	Dimensions map[string]float64 `json:"dimensions"`
	Aggregate  float64            `json:"aggregate"`
	Passed     bool               `json:"passed"`
}

// ResultResponse is the client-facing view of a generation result.
type ResultResponse struct {
	ID          uuid.UUID                    `json:"id"`
	ContentType string                       `json:"content_type"`
	Topic       string                       `json:"topic"`
	Audience    string                       `json:"audience"`
	Provider    string                       `json:"provider"`
	Fields      map[string]domain.FieldValue `json:"fields"`
	Score       ScoreResponse                `json:"score"`
	BestEffort  bool                         `json:"best_effort"`
	Attempts    []AttemptSummary             `json:"attempts"`
	CreatedAt   time.Time                    `json:"created_at"`
}

// NewResultResponse maps a generation result to its client-facing shape.
func NewResultResponse(result *domain.GenerationResult) ResultResponse {
	attempts := make([]AttemptSummary, 0, len(result.Attempts))
	for _, a := range result.Attempts {
		attempts = append(attempts, AttemptSummary{
			Provider:   a.Provider,
			Outcome:    string(a.Outcome),
			ErrorClass: a.ErrorClass,
			LatencyMS:  a.Latency.Milliseconds(),
		})
	}

	return ResultResponse{
		ID:          result.ID,
		ContentType: string(result.Request.ContentType),
		Topic:       result.Request.Topic,
		Audience:    string(result.Request.Audience),
		Provider:    result.Content.Provider,
		Fields:      result.Content.Fields,
		Score: ScoreResponse{
			Dimensions: result.Score.Dimensions,
			Aggregate:  result.Score.Aggregate,
			Passed:     result.Score.Passed,
		},
		BestEffort: result.BestEffort,
		Attempts:   attempts,
		CreatedAt:  result.CreatedAt,
	}
}
