package generation

import (
	"context"
	"time"
)

// Provider is the single generation capability each AI backend adapter
// implements. Implementations bound each call with their configured per-call
// timeout and normalize backend-specific failures into *ProviderError values
// (see errors.go); any other returned error is treated as unavailable.
type Provider interface {
	// ID returns the unique identifier of this provider instance.
	ID() string

	// Tier returns the preference ordering hint; lower tiers are tried first.
	Tier() int

	// Generate sends the prompt to the backend and returns its raw textual
	// response. schemaHint is a JSON skeleton of the expected output shape,
	// passed along to steer the model; adapters may embed it into the
	// request in a backend-specific way.
	Generate(ctx context.Context, prompt, schemaHint string) (*RawResponse, error)

	// Probe performs a lightweight liveness check against the backend.
	// Used by the periodic health checker, never by the request path.
	Probe(ctx context.Context) error
}

// RawResponse is the unparsed output of one successful provider call.
type RawResponse struct {
	Provider   string
	Text       string
	Latency    time.Duration
	ReceivedAt time.Time
}
