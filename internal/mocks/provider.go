package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/studygen/studygen-api/internal/generation"
)

// Step is one scripted outcome of a ScriptedProvider call: either Text for
// a successful response, or Err for a failure.
type Step struct {
	Text string
	Err  error
}

// ScriptedProvider implements generation.Provider, replaying a fixed
// sequence of outcomes. When the script runs out, the last step repeats.
type ScriptedProvider struct {
	IDValue   string
	TierValue int
	Steps     []Step

	// ProbeFn allows tests to script the health probe; nil means success.
	ProbeFn func(ctx context.Context) error

	mu    sync.Mutex
	calls int
}

// NewScriptedProvider creates a provider that replays the given steps.
func NewScriptedProvider(id string, tier int, steps ...Step) *ScriptedProvider {
	return &ScriptedProvider{IDValue: id, TierValue: tier, Steps: steps}
}

// ID implements generation.Provider.
func (p *ScriptedProvider) ID() string { return p.IDValue }

// Tier implements generation.Provider.
func (p *ScriptedProvider) Tier() int { return p.TierValue }

// Generate implements generation.Provider, returning the next scripted step.
func (p *ScriptedProvider) Generate(ctx context.Context, prompt, schemaHint string) (*generation.RawResponse, error) {
	p.mu.Lock()
	index := p.calls
	p.calls++
	if index >= len(p.Steps) {
		index = len(p.Steps) - 1
	}
	step := p.Steps[index]
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if step.Err != nil {
		return nil, step.Err
	}

	return &generation.RawResponse{
		Provider:   p.IDValue,
		Text:       step.Text,
		Latency:    time.Millisecond,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// Probe implements generation.Provider.
func (p *ScriptedProvider) Probe(ctx context.Context) error {
	if p.ProbeFn != nil {
		return p.ProbeFn(ctx)
	}
	return nil
}

// CallCount reports how many times Generate was invoked.
func (p *ScriptedProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
