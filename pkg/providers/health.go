package providers

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// HealthState classifies a provider's recent dispatch outcomes.
type HealthState int

const (
	// Healthy means the provider's last dispatch succeeded, or it has not
	// been dispatched to yet.
	Healthy HealthState = iota

	// Degraded means the provider has failed a few times in a row.
	Degraded

	// Down means the provider has failed persistently and should be
	// avoided when an alternative exists.
	Down
)

// Consecutive-failure thresholds for state transitions.
const (
	DegradedThreshold = 2
	DownThreshold     = 5
)

// String returns the state name.
func (s HealthState) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Degraded:
		return "degraded"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ProviderHealth is a point-in-time view of one provider's health.
type ProviderHealth struct {
	// Provider is the provider name.
	Provider string

	// State is the current health classification.
	State HealthState

	// ConsecutiveFailures counts failures since the last success.
	ConsecutiveFailures int

	// TotalSuccesses counts successful dispatches since startup.
	TotalSuccesses int64

	// TotalFailures counts failed dispatches since startup.
	TotalFailures int64

	// LastFailure is the time of the most recent failure, zero if none.
	LastFailure time.Time

	// LastError is the message of the most recent failure, "" if none.
	LastError string
}

// healthCell holds the mutable health counters for one provider.
type healthCell struct {
	mu                  sync.Mutex
	consecutiveFailures int
	totalSuccesses      int64
	totalFailures       int64
	lastFailure         time.Time
	lastError           string
}

// HealthTracker tracks provider health from dispatch outcomes. It performs
// no probing of its own; dispatch results are its only input.
//
// Health is advisory. A Down provider is skipped when resolving which chains
// are preferable, but fallback execution still tries every target in order,
// so a Down provider that recovers is rediscovered on the next dispatch.
//
// All methods are safe for concurrent use.
type HealthTracker struct {
	cells *xsync.Map[string, *healthCell]
}

// NewHealthTracker creates an empty health tracker.
func NewHealthTracker() *HealthTracker {
	return &HealthTracker{
		cells: xsync.NewMap[string, *healthCell](),
	}
}

// cell returns the health cell for a provider, creating it on first use.
func (t *HealthTracker) cell(provider string) *healthCell {
	c, _ := t.cells.LoadOrCompute(provider, func() (*healthCell, bool) {
		return &healthCell{}, false
	})
	return c
}

// RecordSuccess records a successful dispatch. Any accumulated failure
// streak is cleared and the provider returns to Healthy.
func (t *HealthTracker) RecordSuccess(provider string) {
	c := t.cell(provider)
	c.mu.Lock()
	c.consecutiveFailures = 0
	c.lastError = ""
	c.totalSuccesses++
	c.mu.Unlock()
}

// RecordFailure records a failed dispatch. Callers must only report
// provider-side failures; client errors and caller-cancelled requests say
// nothing about provider health and must not be recorded.
func (t *HealthTracker) RecordFailure(provider string, err error) {
	c := t.cell(provider)
	c.mu.Lock()
	c.consecutiveFailures++
	c.totalFailures++
	c.lastFailure = time.Now()
	if err != nil {
		c.lastError = err.Error()
	}
	c.mu.Unlock()
}

// State returns the current health classification for a provider. Providers
// never dispatched to are Healthy.
func (t *HealthTracker) State(provider string) HealthState {
	c, ok := t.cells.Load(provider)
	if !ok {
		return Healthy
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return stateFor(c.consecutiveFailures)
}

// IsAvailable reports whether a provider should be offered work. Only Down
// providers are unavailable; Degraded providers still receive traffic.
func (t *HealthTracker) IsAvailable(provider string) bool {
	return t.State(provider) != Down
}

// Health returns a point-in-time view of one provider's health.
func (t *HealthTracker) Health(provider string) ProviderHealth {
	c, ok := t.cells.Load(provider)
	if !ok {
		return ProviderHealth{Provider: provider, State: Healthy}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return ProviderHealth{
		Provider:            provider,
		State:               stateFor(c.consecutiveFailures),
		ConsecutiveFailures: c.consecutiveFailures,
		TotalSuccesses:      c.totalSuccesses,
		TotalFailures:       c.totalFailures,
		LastFailure:         c.lastFailure,
		LastError:           c.lastError,
	}
}

// Snapshot returns the health of every provider seen so far.
func (t *HealthTracker) Snapshot() []ProviderHealth {
	var out []ProviderHealth
	t.cells.Range(func(provider string, _ *healthCell) bool {
		out = append(out, t.Health(provider))
		return true
	})
	return out
}

// stateFor maps a consecutive-failure count to a health state.
func stateFor(consecutiveFailures int) HealthState {
	switch {
	case consecutiveFailures >= DownThreshold:
		return Down
	case consecutiveFailures >= DegradedThreshold:
		return Degraded
	default:
		return Healthy
	}
}
