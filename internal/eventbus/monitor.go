// ============================================================================
// AeroSim Event Monitor - Clock-Synchronized Predicate Evaluator
// ============================================================================
//
// Package: internal/eventbus
// File: monitor.go
// Purpose: Clock-registered worker that evaluates a fixed table of
//          EventDefinition predicates once per tick against the current
//          Snapshot and publishes each definition's event, at most once
//          per run, the first time its predicate observes true.
//
// Design Pattern:
//   Grounded on internal/worker/worker_pool.go's clock-registered poll loop
//   (register, wait_for_next_step, do work, notify_step_completed, scoped
//   release via defer) generalized from job dispatch to predicate scanning.
//   The edge-trigger latch (fires once, never re-fires) mirrors the
//   once-only completion bookkeeping in internal/jobmanager/job_manager.go.
//
// ============================================================================

package eventbus

import (
	"log/slog"
	"sync"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// Clock is the subset of *clock.Clock the monitor needs.
type Clock interface {
	RegisterWorker()
	UnregisterWorker()
	WaitForNextStep(lastStep int64) int64
	NotifyStepCompleted()
	IsRunning() bool
}

// State is the subset of *state.State the monitor needs.
type State interface {
	Snapshot() types.Snapshot
}

// Monitor evaluates EventDefinition predicates once per tick and publishes
// each at most once, edge-triggered on the first true observation.
type Monitor struct {
	clock Clock
	state State
	bus   *Bus

	mu     sync.Mutex
	defs   []types.EventDefinition
	fired  map[string]bool
	onFire func(types.EventDefinition)

	log *slog.Logger
}

// NewMonitor constructs a Monitor with no event definitions loaded.
// Use SetEventDefinitions to load a scenario's table.
func NewMonitor(c Clock, s State, bus *Bus) *Monitor {
	return &Monitor{
		clock: c,
		state: s,
		bus:   bus,
		fired: make(map[string]bool),
		log:   slog.Default().With("component", "event_monitor"),
	}
}

// SetEventDefinitions replaces the active predicate table and resets the
// latch bookkeeping, so a scenario may be reloaded between runs.
func (m *Monitor) SetEventDefinitions(defs []types.EventDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = defs
	m.fired = make(map[string]bool, len(defs))
}

// OnFire installs a callback invoked (outside the bus worker pool, inline
// on the monitor's own tick) whenever a definition transitions to fired.
// internal/sim uses this to drive the events-fired metric; the
// controller manager receives fired events through its bus subscriptions.
func (m *Monitor) OnFire(fn func(types.EventDefinition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFire = fn
}

// Run executes the monitor's per-tick scan loop until the clock stops.
func (m *Monitor) Run() {
	m.clock.RegisterWorker()
	defer m.clock.UnregisterWorker()

	defer func() {
		if r := recover(); r != nil {
			m.log.Error("event monitor panic recovered", "panic", r)
		}
	}()

	var lastStep int64
	for {
		step := m.clock.WaitForNextStep(lastStep)
		if !m.clock.IsRunning() {
			return
		}
		lastStep = step

		m.scan()

		m.clock.NotifyStepCompleted()
	}
}

func (m *Monitor) scan() {
	snap := m.state.Snapshot()

	m.mu.Lock()
	defs := m.defs
	m.mu.Unlock()

	for _, def := range defs {
		if def.Predicate == nil {
			continue
		}

		m.mu.Lock()
		already := m.fired[def.Name]
		m.mu.Unlock()
		if already {
			continue
		}

		if !def.Predicate(snap) {
			continue
		}

		m.mu.Lock()
		m.fired[def.Name] = true
		onFire := m.onFire
		m.mu.Unlock()

		m.log.Info("event fired", "event", def.Name, "description", def.Description)
		if m.bus != nil {
			m.bus.Publish(def.Name, snap)
		}
		if onFire != nil {
			onFire(def)
		}
	}
}

// HasFired reports whether name has already latched in this run.
func (m *Monitor) HasFired(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fired[name]
}
