// Package health tracks the liveness of the optional backends (cache and
// search index) so callers can skip an unusable accelerant without blocking
// on it. The document store is not tracked here: store failures are real
// errors, not degradation.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Backend identifies a tracked accelerant.
type Backend string

const (
	Cache  Backend = "cache"
	Search Backend = "search"
)

// State is the last known liveness of a backend.
type State int32

const (
	// Unprobed means no connection attempt has completed yet.
	Unprobed State = iota
	Available
	Unavailable
)

func (s State) String() string {
	switch s {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "unprobed"
	}
}

// Prober performs a synchronous liveness check against a backend. Backends
// whose client pushes no connection events (the search index) register one;
// event-driven backends (the cache) do not.
type Prober interface {
	Probe(ctx context.Context) error
}

// Monitor holds per-backend liveness state. Transitions are logged once per
// state change, never per failing call.
type Monitor struct {
	logger       *slog.Logger
	probeTimeout time.Duration

	mu      sync.RWMutex
	states  map[Backend]State
	probers map[Backend]Prober
}

// NewMonitor creates a monitor with all backends unprobed.
func NewMonitor(logger *slog.Logger, probeTimeout time.Duration) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if probeTimeout <= 0 {
		probeTimeout = 2 * time.Second
	}
	return &Monitor{
		logger:       logger.With("component", "health"),
		probeTimeout: probeTimeout,
		states:       make(map[Backend]State),
		probers:      make(map[Backend]Prober),
	}
}

// SetProber registers a synchronous check for a backend. Usable then probes
// on every call instead of returning the cached state.
func (m *Monitor) SetProber(b Backend, p Prober) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probers[b] = p
}

// MarkAvailable records a successful connection event.
func (m *Monitor) MarkAvailable(b Backend) {
	m.transition(b, Available)
}

// MarkUnavailable records a failed connection event. It never propagates
// anything to callers; degraded backends are simply skipped.
func (m *Monitor) MarkUnavailable(b Backend) {
	m.transition(b, Unavailable)
}

// State returns the last known state of a backend.
func (m *Monitor) State(b Backend) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[b]
}

// Usable reports whether a backend can be used right now. For event-driven
// backends this is a memory read. For probe-driven backends it runs the
// registered check bounded by the probe timeout; errors and timeouts count
// as unusable.
func (m *Monitor) Usable(ctx context.Context, b Backend) bool {
	m.mu.RLock()
	prober := m.probers[b]
	state := m.states[b]
	m.mu.RUnlock()

	if prober == nil {
		return state == Available
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	if err := prober.Probe(probeCtx); err != nil {
		m.transition(b, Unavailable)
		return false
	}
	m.transition(b, Available)
	return true
}

func (m *Monitor) transition(b Backend, next State) {
	m.mu.Lock()
	prev := m.states[b]
	m.states[b] = next
	m.mu.Unlock()

	if prev != next {
		m.logger.Info("backend state changed",
			"backend", string(b),
			"from", prev.String(),
			"to", next.String(),
		)
	}
}
