// Package health runs the periodic provider probe loop feeding the
// fallback router's health table. The prober is the only writer to the
// table besides the router itself; both go through the per-provider
// descriptor update path.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/provider"
	"github.com/studygen/studygen-api/internal/redact"
)

// Prober periodically calls each provider's lightweight probe and records
// the outcome in the health table.
type Prober struct {
	providers []generation.Provider
	table     *provider.Table
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewProber creates a prober over the given providers and health table.
func NewProber(providers []generation.Provider, table *provider.Table, cfg config.HealthConfig, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Prober{
		providers:  providers,
		table:      table,
		interval:   interval,
		timeout:    timeout,
		logger:     logger.With(slog.String("component", "health_prober")),
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// Start begins the probe loop. The first round runs immediately so the
// table reflects reality before the first request arrives.
func (p *Prober) Start() {
	p.wg.Add(1)
	go p.loop()
}

// Stop shuts the probe loop down and waits for in-flight probes to finish.
func (p *Prober) Stop() {
	p.cancelFunc()
	p.wg.Wait()
}

func (p *Prober) loop() {
	defer p.wg.Done()

	p.ProbeAll(p.ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.ProbeAll(p.ctx)
		case <-p.ctx.Done():
			return
		}
	}
}

// ProbeAll probes every provider once, concurrently, and records each
// outcome. Exported so startup and tests can force a round synchronously.
func (p *Prober) ProbeAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, prov := range p.providers {
		wg.Add(1)
		go func(prov generation.Provider) {
			defer wg.Done()
			p.probeOne(ctx, prov)
		}(prov)
	}
	wg.Wait()
}

func (p *Prober) probeOne(ctx context.Context, prov generation.Provider) {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	descriptor := p.table.Get(prov.ID())
	if descriptor == nil {
		return
	}

	if err := prov.Probe(probeCtx); err != nil {
		if ctx.Err() != nil {
			// Shutdown, not a provider fault.
			return
		}
		descriptor.RecordFailure()
		p.logger.Warn("provider probe failed",
			slog.String("provider", prov.ID()),
			slog.String("state", string(descriptor.State())),
			slog.String("error", redact.Error(err)))
		return
	}

	descriptor.RecordSuccess()
	p.logger.Debug("provider probe succeeded", slog.String("provider", prov.ID()))
}
