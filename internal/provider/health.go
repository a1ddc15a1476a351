package provider

import (
	"sync"
	"time"

	"github.com/studygen/studygen-api/internal/generation"
)

// HealthState describes a provider's current standing.
type HealthState string

// Possible health states.
const (
	StateHealthy   HealthState = "healthy"
	StateDegraded  HealthState = "degraded"
	StateUnhealthy HealthState = "unhealthy"
)

// State transition thresholds on consecutive failures.
const (
	degradedAfter  = 1
	unhealthyAfter = 3
)

// Descriptor tracks one provider's health observations. Each descriptor has
// its own lock; updates never contend across providers.
type Descriptor struct {
	mu sync.Mutex

	id   string
	tier int

	successes           uint64
	failures            uint64
	consecutiveFailures int
	lastChecked         time.Time
}

// DescriptorSnapshot is a point-in-time copy of a descriptor, safe to read
// without holding its lock.
type DescriptorSnapshot struct {
	ID                  string      `json:"id"`
	Tier                int         `json:"tier"`
	State               HealthState `json:"state"`
	Successes           uint64      `json:"successes"`
	Failures            uint64      `json:"failures"`
	ConsecutiveFailures int         `json:"consecutive_failures"`
	LastChecked         time.Time   `json:"last_checked"`
}

// RecordSuccess notes a successful observation and restores the provider to
// healthy.
func (d *Descriptor) RecordSuccess() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.successes++
	d.consecutiveFailures = 0
	d.lastChecked = time.Now().UTC()
}

// RecordFailure notes a failed observation.
func (d *Descriptor) RecordFailure() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.failures++
	d.consecutiveFailures++
	d.lastChecked = time.Now().UTC()
}

// State derives the health state from consecutive failures: zero means
// healthy, a short streak degrades, a longer one marks the provider
// unhealthy until a success resets it.
func (d *Descriptor) State() HealthState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateLocked()
}

func (d *Descriptor) stateLocked() HealthState {
	switch {
	case d.consecutiveFailures >= unhealthyAfter:
		return StateUnhealthy
	case d.consecutiveFailures >= degradedAfter:
		return StateDegraded
	default:
		return StateHealthy
	}
}

// Snapshot returns a copy of the descriptor's current observations.
func (d *Descriptor) Snapshot() DescriptorSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return DescriptorSnapshot{
		ID:                  d.id,
		Tier:                d.tier,
		State:               d.stateLocked(),
		Successes:           d.successes,
		Failures:            d.failures,
		ConsecutiveFailures: d.consecutiveFailures,
		LastChecked:         d.lastChecked,
	}
}

// Table holds one Descriptor per configured provider. The map itself is
// fixed at construction and read-only, so lookups are lock-free; all
// mutation happens inside the per-provider descriptors.
type Table struct {
	descriptors map[string]*Descriptor
	order       []string
}

// NewTable builds a health table with one healthy descriptor per provider.
func NewTable(providers []generation.Provider) *Table {
	descriptors := make(map[string]*Descriptor, len(providers))
	order := make([]string, 0, len(providers))

	for _, p := range providers {
		descriptors[p.ID()] = &Descriptor{id: p.ID(), tier: p.Tier()}
		order = append(order, p.ID())
	}

	return &Table{descriptors: descriptors, order: order}
}

// Get returns the descriptor for a provider id, or nil if unknown.
func (t *Table) Get(id string) *Descriptor {
	return t.descriptors[id]
}

// Snapshots returns a snapshot per provider in configuration order.
func (t *Table) Snapshots() []DescriptorSnapshot {
	snapshots := make([]DescriptorSnapshot, 0, len(t.order))
	for _, id := range t.order {
		snapshots = append(snapshots, t.descriptors[id].Snapshot())
	}
	return snapshots
}
