package quality

import (
	"fmt"
	"log/slog"

	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/domain"
)

// Assessor computes a QualityScore for normalized content by running every
// configured dimension and combining them with a weighted sum. Weights,
// per-dimension floors, and per-content-type pass thresholds all come from
// configuration; the assessor itself hardcodes nothing.
type Assessor struct {
	dimensions []Dimension
	weights    map[string]float64
	floors     map[string]float64
	thresholds map[string]float64
	fallback   float64
	logger     *slog.Logger
}

// NewAssessor builds an Assessor from configuration. Every dimension must
// have a weight entry; weights are normalized so they need not sum to one.
func NewAssessor(cfg config.QualityConfig, dimensions []Dimension, logger *slog.Logger) (*Assessor, error) {
	if len(dimensions) == 0 {
		return nil, fmt.Errorf("quality assessor requires at least one dimension")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	var weightSum float64
	for _, dim := range dimensions {
		w, ok := cfg.Weights[dim.Name()]
		if !ok {
			return nil, fmt.Errorf("no weight configured for dimension %q", dim.Name())
		}
		if w < 0 {
			return nil, fmt.Errorf("negative weight for dimension %q", dim.Name())
		}
		weightSum += w
	}
	if weightSum == 0 {
		return nil, fmt.Errorf("dimension weights sum to zero")
	}

	weights := make(map[string]float64, len(dimensions))
	for _, dim := range dimensions {
		weights[dim.Name()] = cfg.Weights[dim.Name()] / weightSum
	}

	return &Assessor{
		dimensions: dimensions,
		weights:    weights,
		floors:     cfg.Floors,
		thresholds: cfg.PassThresholds,
		fallback:   cfg.DefaultThreshold,
		logger:     logger.With(slog.String("component", "quality_assessor")),
	}, nil
}

// ScoreContent runs every dimension over the content and returns the
// aggregate verdict. The verdict passes only when the aggregate meets the
// content type's threshold and no dimension falls below its floor; content
// cannot pass on average while being catastrophically weak in one dimension.
func (a *Assessor) ScoreContent(content *domain.NormalizedContent, req *domain.ContentRequest) *domain.QualityScore {
	scores := make(map[string]float64, len(a.dimensions))
	aggregate := 0.0
	aboveFloors := true

	for _, dim := range a.dimensions {
		score := clamp(dim.Score(content, req))
		scores[dim.Name()] = score
		aggregate += score * a.weights[dim.Name()]

		if floor, ok := a.floors[dim.Name()]; ok && score < floor {
			aboveFloors = false
		}
	}

	threshold := a.thresholdFor(content.ContentType)
	passed := aboveFloors && aggregate >= threshold

	a.logger.Debug("content scored",
		slog.String("content_type", string(content.ContentType)),
		slog.Float64("aggregate", aggregate),
		slog.Float64("threshold", threshold),
		slog.Bool("passed", passed),
	)

	return &domain.QualityScore{
		Dimensions: scores,
		Aggregate:  aggregate,
		Passed:     passed,
	}
}

// thresholdFor returns the pass threshold for a content type, falling back
// to the configured default.
func (a *Assessor) thresholdFor(contentType domain.ContentType) float64 {
	if t, ok := a.thresholds[string(contentType)]; ok {
		return t
	}
	return a.fallback
}
