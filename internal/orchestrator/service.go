// Package orchestrator drives a content request through the full pipeline:
// template resolution, provider generation, normalization, and quality
// scoring, ending in an accepted result, a flagged best-effort result, or a
// terminal error. Each request is an independent unit of work; the only
// shared state lives in the collaborators the service is built with.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/events"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/normalize"
	"github.com/studygen/studygen-api/internal/provider"
	"github.com/studygen/studygen-api/internal/template"
)

// elaborationHint is appended to the prompt when regenerating after a
// quality rejection.
const elaborationHint = "Your previous answer was too thin. Expand every " +
	"section with concrete facts, examples, and fuller explanations while " +
	"keeping exactly the same output structure."

// Generator produces a raw response from some provider, recording every
// attempt it makes. Satisfied by *provider.Router.
type Generator interface {
	Generate(ctx context.Context, prompt, schemaHint string) (*generation.RawResponse, []domain.GenerationAttempt, error)
}

// Scorer computes a quality verdict for normalized content. Satisfied by
// *quality.Assessor.
type Scorer interface {
	ScoreContent(content *domain.NormalizedContent, req *domain.ContentRequest) *domain.QualityScore
}

// Service is the pipeline entry point.
type Service struct {
	templates *template.Registry
	generator Generator
	scorer    Scorer
	emitter   events.EventEmitter
	logger    *slog.Logger
}

// NewService wires the pipeline. emitter may be nil when no persistence or
// other result consumers are configured.
func NewService(
	templates *template.Registry,
	generator Generator,
	scorer Scorer,
	emitter events.EventEmitter,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		templates: templates,
		generator: generator,
		scorer:    scorer,
		emitter:   emitter,
		logger:    logger.With(slog.String("component", "orchestrator")),
	}
}

// Generate runs one content request through the pipeline.
//
// Normalization failure and quality rejection each have an independent
// regeneration budget of one cycle. A quality-rejected regeneration
// re-renders the prompt with an elaboration hint; if the second attempt
// still fails scoring, the result is returned flagged as best-effort rather
// than silently upgraded or discarded.
//
// Terminal errors are ErrUnknownContentType and ErrTemplateRender before
// any provider call, and *provider.ExhaustedError, *provider.CancelledError,
// or a *GenerationError wrapping the final schema mismatch afterwards.
func (s *Service) Generate(ctx context.Context, req *domain.ContentRequest) (*domain.GenerationResult, error) {
	log := s.logger.With(
		slog.String("request_id", req.ID.String()),
		slog.String("content_type", string(req.ContentType)),
	)

	tmpl, err := s.templates.Get(req.ContentType)
	if err != nil {
		return nil, err
	}

	prompt, err := s.templates.Render(tmpl, req, "")
	if err != nil {
		return nil, err
	}
	schemaHint := template.SchemaHint(tmpl.Schema)

	var trail []domain.GenerationAttempt
	schemaRegens := 1
	qualityRegens := 1

	for {
		raw, attempts, genErr := s.generator.Generate(ctx, prompt, schemaHint)
		trail = append(trail, attempts...)
		if genErr != nil {
			return nil, withFullTrail(genErr, trail)
		}

		content, normErr := normalize.Normalize(raw, req.ContentType, tmpl.Schema)
		if normErr != nil {
			if schemaRegens > 0 {
				schemaRegens--
				log.WarnContext(ctx, "normalization failed, regenerating",
					slog.String("provider", raw.Provider),
					slog.String("error", normErr.Error()))
				continue
			}
			return nil, &GenerationError{Attempts: trail, Err: normErr}
		}

		score := s.scorer.ScoreContent(content, req)
		if score.Passed {
			return s.finish(ctx, log, req, content, score, trail, false)
		}

		if qualityRegens > 0 {
			qualityRegens--
			prompt, err = s.templates.Render(tmpl, req, elaborationHint)
			if err != nil {
				return nil, err
			}
			log.InfoContext(ctx, "quality rejected, regenerating with elaboration",
				slog.Float64("aggregate", score.Aggregate))
			continue
		}

		log.WarnContext(ctx, "quality rejected after regeneration, returning best-effort",
			slog.Float64("aggregate", score.Aggregate))
		return s.finish(ctx, log, req, content, score, trail, true)
	}
}

// finish builds the final result and hands it to result consumers without
// blocking or failing the request.
func (s *Service) finish(
	ctx context.Context,
	log *slog.Logger,
	req *domain.ContentRequest,
	content *domain.NormalizedContent,
	score *domain.QualityScore,
	trail []domain.GenerationAttempt,
	bestEffort bool,
) (*domain.GenerationResult, error) {
	result, err := domain.NewGenerationResult(req, content, score, trail, bestEffort)
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "generation finished",
		slog.String("result_id", result.ID.String()),
		slog.Float64("aggregate", score.Aggregate),
		slog.Bool("best_effort", bestEffort),
		slog.Int("attempts", len(trail)))

	if s.emitter != nil {
		event := events.NewResultEvent(result)
		go func() {
			// Detached from the request's cancellation; storage outlives
			// the HTTP response.
			emitCtx := context.WithoutCancel(ctx)
			if err := s.emitter.EmitEvent(emitCtx, event); err != nil {
				s.logger.Error("result event handling failed",
					slog.String("result_id", result.ID.String()),
					slog.String("error", err.Error()))
			}
		}()
	}

	return result, nil
}

// withFullTrail folds attempts from earlier regeneration cycles into a
// router error so the surfaced trail covers the whole request, not just the
// final cycle.
func withFullTrail(err error, trail []domain.GenerationAttempt) error {
	var exhausted *provider.ExhaustedError
	if errors.As(err, &exhausted) && len(trail) > len(exhausted.Attempts) {
		exhausted.Attempts = trail
	}

	var cancelled *provider.CancelledError
	if errors.As(err, &cancelled) && len(trail) > len(cancelled.Attempts) {
		cancelled.Attempts = trail
	}

	return err
}
