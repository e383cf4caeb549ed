// ============================================================================
// AeroSim State Manager - Queue-Draining Clock Worker
// ============================================================================
//
// Package: internal/squeue
// File: manager.go
// Purpose: Clock-registered worker that drains the state-update queue once
//          per tick and applies the batch to SharedState as one coherent
//          commit.
//
// Per-tick body (spec §4.3):
//   1. wait_for_next_step
//   2. drain all pending messages, apply each to its field
//   3. secondary derived-state processing (reserved extension point: none
//      yet, matching the teacher's own "reserved extension point" comments
//      in internal/worker/worker_pool.go's Phase 2 TODOs)
//   4. optionally emit a per-tick state log
//   5. notify_step_completed
//
// ============================================================================

package squeue

import (
	"log/slog"
	"time"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// Clock is the subset of *clock.Clock the manager needs. Defined locally so
// this package doesn't import internal/clock, matching the teacher's own
// narrow per-package interfaces (internal/worker.JobSource).
type Clock interface {
	RegisterWorker()
	UnregisterWorker()
	WaitForNextStep(lastStep int64) int64
	NotifyStepCompleted()
	IsRunning() bool
	CurrentTime() float64
}

// State is the subset of *state.State the manager needs.
type State interface {
	Snapshot() types.Snapshot
	CommitSnapshot(types.Snapshot)
}

// TickLogger is the reserved per-tick state-log extension point. Recorder
// implementations (internal/recorder) satisfy this.
type TickLogger interface {
	LogTick(types.Snapshot)
}

// Manager is the clock-registered state-update queue drain worker.
type Manager struct {
	clock  Clock
	queue  *Queue
	state  State
	logger TickLogger

	onTick func(durationSeconds float64)

	log *slog.Logger
}

// NewManager constructs a Manager. logger may be nil (no per-tick log sink).
func NewManager(c Clock, q *Queue, s State, logger TickLogger) *Manager {
	return &Manager{clock: c, queue: q, state: s, logger: logger, log: slog.Default().With("component", "state_manager")}
}

// OnTick installs a callback invoked once per completed tick with the
// tick's wall-clock duration. internal/metrics uses this to drive the
// simulation_ticks_total counter and simulation_tick_duration_seconds
// histogram.
func (m *Manager) OnTick(fn func(durationSeconds float64)) {
	m.onTick = fn
}

// Run executes the manager's per-tick loop until the clock stops. It
// registers with the clock on entry and unregisters on every exit path,
// including panic recovery, matching spec §4.1's "scoped release".
func (m *Manager) Run() {
	m.clock.RegisterWorker()
	defer m.clock.UnregisterWorker()

	defer func() {
		if r := recover(); r != nil {
			m.log.Error("state manager panic recovered", "panic", r)
		}
	}()

	var lastStep int64
	for {
		step := m.clock.WaitForNextStep(lastStep)
		if !m.clock.IsRunning() {
			return
		}
		lastStep = step

		start := time.Now()
		m.drainAndApply()
		if m.onTick != nil {
			m.onTick(time.Since(start).Seconds())
		}

		m.clock.NotifyStepCompleted()
	}
}

func (m *Manager) drainAndApply() {
	messages := m.queue.TryPopAll()
	if len(messages) == 0 {
		return
	}

	snap := m.state.Snapshot()
	for _, msg := range messages {
		switch msg.Kind {
		case types.UpdatePosition:
			snap.Position = msg.Value
		case types.UpdateVelocity:
			snap.Velocity = msg.Value
			if snap.Velocity < 0 {
				snap.Velocity = 0
			}
		case types.UpdateAcceleration:
			snap.Acceleration = msg.Value
		case types.UpdateThrottle:
			snap.Throttle = clamp01(msg.Value)
		case types.UpdateBrake:
			snap.Brake = clamp01(msg.Value)
		default:
			m.log.Warn("dropping state-update message with unknown kind", "kind", msg.Kind)
		}
	}
	snap.SimulationTime = m.clock.CurrentTime()

	m.state.CommitSnapshot(snap)

	if m.logger != nil {
		m.logger.LogTick(m.state.Snapshot())
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
