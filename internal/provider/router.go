// Package provider implements the provider pool: the per-provider health
// table and the fallback router that hides individual provider instability
// from the rest of the generation pipeline.
package provider

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/redact"
)

// defaultRateLimitBackoff is used when a rate-limited provider suggests no
// backoff of its own.
const defaultRateLimitBackoff = time.Second

// Router executes generation requests against the provider pool with
// retry-then-fallback semantics: transient per-provider failures (rate
// limit, timeout) earn one retry on the same provider; structural failures
// (auth, unavailable, malformed output) fail fast to the next candidate.
type Router struct {
	providers  []generation.Provider
	table      *Table
	backoffCap time.Duration
	logger     *slog.Logger

	// sleep waits for the given duration or until the context is done.
	// Swapped out by tests to avoid real sleeps.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRouter creates a Router over the given providers and health table.
// backoffCap bounds how long a provider-suggested rate-limit backoff is
// honored.
func NewRouter(providers []generation.Provider, table *Table, backoffCap time.Duration, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	return &Router{
		providers:  providers,
		table:      table,
		backoffCap: backoffCap,
		logger:     logger.With("component", "fallback_router"),
		sleep:      sleepContext,
	}
}

// Generate produces a raw response from some healthy provider. Every call,
// successful or not, is recorded in the returned attempt trail. On failure
// the trail is also embedded in the returned error (*ExhaustedError or
// *CancelledError).
func (r *Router) Generate(ctx context.Context, prompt, schemaHint string) (*generation.RawResponse, []domain.GenerationAttempt, error) {
	attempts := make([]domain.GenerationAttempt, 0, len(r.providers))

	candidates := r.candidates()
	r.logger.DebugContext(ctx, "built candidate order", "candidates", candidateIDs(candidates))

	for _, p := range candidates {
		resp, done, err := r.tryProvider(ctx, p, prompt, schemaHint, &attempts)
		if done {
			return resp, attempts, err
		}
	}

	r.logger.WarnContext(ctx, "all providers exhausted", "attempts", len(attempts))
	return nil, attempts, &ExhaustedError{Attempts: attempts}
}

// tryProvider runs one provider's bounded attempt sequence. done is true
// when the chain should stop, either with a success or a terminal error;
// false means advance to the next candidate.
func (r *Router) tryProvider(
	ctx context.Context,
	p generation.Provider,
	prompt, schemaHint string,
	attempts *[]domain.GenerationAttempt,
) (*generation.RawResponse, bool, error) {
	descriptor := r.table.Get(p.ID())
	rateRetried := false
	timeoutRetried := false

	for {
		start := time.Now()
		resp, err := p.Generate(ctx, prompt, schemaHint)
		latency := time.Since(start)

		if err == nil {
			*attempts = append(*attempts, domain.GenerationAttempt{
				Provider:  p.ID(),
				Outcome:   domain.AttemptSuccess,
				Latency:   latency,
				Timestamp: time.Now().UTC(),
			})
			descriptor.RecordSuccess()
			r.logger.InfoContext(ctx, "provider call succeeded",
				"provider", p.ID(),
				"latency_ms", latency.Milliseconds())
			return resp, true, nil
		}

		// Caller cancellation is not a provider fault: record the aborted
		// attempt as cancelled and stop the chain without touching health.
		if ctx.Err() != nil {
			*attempts = append(*attempts, domain.GenerationAttempt{
				Provider:  p.ID(),
				Outcome:   domain.AttemptCancelled,
				Latency:   latency,
				Timestamp: time.Now().UTC(),
			})
			r.logger.WarnContext(ctx, "generation cancelled mid-call", "provider", p.ID())
			return nil, true, &CancelledError{Attempts: *attempts, Cause: ctx.Err()}
		}

		class := generation.ClassifyError(err)
		*attempts = append(*attempts, domain.GenerationAttempt{
			Provider:   p.ID(),
			Outcome:    domain.AttemptFailure,
			ErrorClass: string(class),
			Latency:    latency,
			Timestamp:  time.Now().UTC(),
		})
		descriptor.RecordFailure()

		r.logger.WarnContext(ctx, "provider call failed",
			"provider", p.ID(),
			"class", string(class),
			"error", redact.Error(err))

		switch class {
		case generation.FailureRateLimited:
			if rateRetried {
				return nil, false, nil
			}
			rateRetried = true

			backoff := rateLimitBackoff(err)
			if backoff > r.backoffCap {
				backoff = r.backoffCap
			}
			if sleepErr := r.sleep(ctx, backoff); sleepErr != nil {
				return nil, true, &CancelledError{Attempts: *attempts, Cause: sleepErr}
			}

		case generation.FailureTimeout:
			if timeoutRetried {
				return nil, false, nil
			}
			timeoutRetried = true
			// Retry immediately on the same provider.

		default:
			// Auth, unavailable, malformed: structural problems. Advance
			// without spending the retry budget.
			return nil, false, nil
		}
	}
}

// candidates orders the pool for this request: healthy providers first by
// tier, then degraded by tier. Unhealthy providers are excluded unless
// nothing else remains, in which case they are tried as a last resort.
func (r *Router) candidates() []generation.Provider {
	var healthy, degraded, unhealthy []generation.Provider

	for _, p := range r.providers {
		switch r.table.Get(p.ID()).State() {
		case StateHealthy:
			healthy = append(healthy, p)
		case StateDegraded:
			degraded = append(degraded, p)
		default:
			unhealthy = append(unhealthy, p)
		}
	}

	byTier(healthy)
	byTier(degraded)

	ordered := append(healthy, degraded...)
	if len(ordered) == 0 {
		byTier(unhealthy)
		return unhealthy
	}
	return ordered
}

// byTier sorts providers by tier, preserving configuration order within a
// tier.
func byTier(providers []generation.Provider) {
	sort.SliceStable(providers, func(i, j int) bool {
		return providers[i].Tier() < providers[j].Tier()
	})
}

// rateLimitBackoff extracts the provider-suggested backoff from a
// rate-limit error, defaulting when none was supplied.
func rateLimitBackoff(err error) time.Duration {
	var perr *generation.ProviderError
	if errors.As(err, &perr) && perr.RetryAfter > 0 {
		return perr.RetryAfter
	}
	return defaultRateLimitBackoff
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func candidateIDs(providers []generation.Provider) []string {
	ids := make([]string, len(providers))
	for i, p := range providers {
		ids[i] = p.ID()
	}
	return ids
}
