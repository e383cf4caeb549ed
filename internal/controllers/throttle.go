// ============================================================================
// AeroSim Controllers - Throttle Increase / Decrease
// ============================================================================
//
// Package: internal/controllers
// File: throttle.go
// Purpose: ThrottleIncrease and ThrottleDecrease control laws (spec §4.6
//          table rows 1-2). Both enqueue a Throttle StateUpdateMessage
//          rather than writing SharedState directly, so their writes are
//          serialized through the state manager's once-per-tick commit.
//
// Shared Enable Flag:
//   The data model (spec §3) provides exactly one state-visible enable
//   flag for both directions, throttle_control_enabled; applyStateSettings
//   writes it regardless of which direction's action fired. Each
//   controller's own running bit is independent, so the
//   ControllerManager enforces mutual exclusion itself by stopping
//   whichever direction is not the one just started (see manager.go's
//   startController).
//
// ============================================================================

package controllers

import (
	"log/slog"
	"sync/atomic"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// ThrottleIncrease implements the throttle_inc control law.
type ThrottleIncrease struct {
	clock   Clock
	queue   Queue
	state   State
	log     *slog.Logger
	running atomic.Bool
}

// NewThrottleIncrease constructs the throttle_inc controller.
func NewThrottleIncrease(c Clock, q Queue, s State) *ThrottleIncrease {
	return &ThrottleIncrease{clock: c, queue: q, state: s, log: slog.Default().With("controller", "throttle_inc")}
}

func (t *ThrottleIncrease) Name() string         { return "throttle_inc" }
func (t *ThrottleIncrease) IsEnabled() bool       { return t.running.Load() }
func (t *ThrottleIncrease) Start()                { t.running.Store(true) }
func (t *ThrottleIncrease) Stop()                 { t.running.Store(false) }
func (t *ThrottleIncrease) CurrentValue() float64 { return t.state.Throttle() }

// Run executes the throttle_inc clock worker loop.
func (t *ThrottleIncrease) Run() {
	runLoop(t.Name(), t.clock, t.IsEnabled, t.step, t.log)
}

func (t *ThrottleIncrease) step(dt float64) {
	current := t.state.Throttle()
	next := saturate(current+0.1*dt, 0, 1)
	if next == current {
		return
	}
	t.queue.Push(types.StateUpdateMessage{Kind: types.UpdateThrottle, Value: next})
}

// ThrottleDecrease implements the throttle_dec control law.
type ThrottleDecrease struct {
	clock   Clock
	queue   Queue
	state   State
	log     *slog.Logger
	running atomic.Bool
}

// NewThrottleDecrease constructs the throttle_dec controller.
func NewThrottleDecrease(c Clock, q Queue, s State) *ThrottleDecrease {
	return &ThrottleDecrease{clock: c, queue: q, state: s, log: slog.Default().With("controller", "throttle_dec")}
}

func (t *ThrottleDecrease) Name() string         { return "throttle_dec" }
func (t *ThrottleDecrease) IsEnabled() bool       { return t.running.Load() }
func (t *ThrottleDecrease) Start()                { t.running.Store(true) }
func (t *ThrottleDecrease) Stop()                 { t.running.Store(false) }
func (t *ThrottleDecrease) CurrentValue() float64 { return t.state.Throttle() }

// Run executes the throttle_dec clock worker loop.
func (t *ThrottleDecrease) Run() {
	runLoop(t.Name(), t.clock, t.IsEnabled, t.step, t.log)
}

func (t *ThrottleDecrease) step(dt float64) {
	next := t.state.Throttle() - 0.2*dt
	if next < 0 {
		next = 0
	}
	t.queue.Push(types.StateUpdateMessage{Kind: types.UpdateThrottle, Value: next})
}
