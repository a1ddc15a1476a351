package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Result invariant errors
var (
	// ErrResultWithoutScore is returned when a result is built from content
	// that was never scored. No content bypasses scoring.
	ErrResultWithoutScore = errors.New("generation result requires a quality score")

	// ErrResultNotFlagged is returned when a failing result is built without
	// the explicit best-effort flag.
	ErrResultNotFlagged = errors.New("failing result must carry the best-effort flag")
)

// AttemptOutcome classifies how a single provider call ended.
type AttemptOutcome string

// Possible attempt outcomes.
const (
	AttemptSuccess   AttemptOutcome = "success"
	AttemptFailure   AttemptOutcome = "failure"
	AttemptCancelled AttemptOutcome = "cancelled"
)

// GenerationAttempt records one call to one provider, successful or not.
// Attempts are transient diagnostics; they are folded into the final
// GenerationResult and never persisted on their own.
type GenerationAttempt struct {
	Provider   string         `json:"provider"`
	Outcome    AttemptOutcome `json:"outcome"`
	ErrorClass string         `json:"error_class,omitempty"`
	Latency    time.Duration  `json:"latency_ns"`
	Timestamp  time.Time      `json:"timestamp"`
}

// QualityScore is the multi-dimensional assessment of one piece of
// normalized content. All scores are in [0, 1]. Derived, never mutated
// after computation.
type QualityScore struct {
	Dimensions map[string]float64 `json:"dimensions"`
	Aggregate  float64            `json:"aggregate"`
	Passed     bool               `json:"passed"`
}

// GenerationResult is the final output of the engine for one request:
// the normalized content, its quality score, and the ordered attempt trail
// that produced it.
//
// Invariant: a result either passed scoring, or failed and carries the
// explicit BestEffort flag. NewGenerationResult enforces this.
type GenerationResult struct {
	ID         uuid.UUID           `json:"id"`
	Request    *ContentRequest     `json:"request"`
	Content    *NormalizedContent  `json:"content"`
	Score      *QualityScore       `json:"score"`
	Attempts   []GenerationAttempt `json:"attempts"`
	BestEffort bool                `json:"best_effort"`
	CreatedAt  time.Time           `json:"created_at"`
}

// NewGenerationResult builds a GenerationResult, enforcing the scoring
// invariants: content must have been scored, and a failing score must be
// explicitly flagged as best-effort rather than silently returned.
func NewGenerationResult(
	req *ContentRequest,
	content *NormalizedContent,
	score *QualityScore,
	attempts []GenerationAttempt,
	bestEffort bool,
) (*GenerationResult, error) {
	if score == nil {
		return nil, ErrResultWithoutScore
	}

	if !score.Passed && !bestEffort {
		return nil, ErrResultNotFlagged
	}

	return &GenerationResult{
		ID:         uuid.New(),
		Request:    req,
		Content:    content,
		Score:      score,
		Attempts:   attempts,
		BestEffort: bestEffort,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
