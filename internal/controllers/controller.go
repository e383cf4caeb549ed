// ============================================================================
// AeroSim Controllers - Shared Contract & Per-Tick Worker Loop
// ============================================================================
//
// Package: internal/controllers
// File: controller.go
// Purpose: Common Controller contract and the clock-synchronized worker
//          loop every controller implementation shares.
//
// Design Pattern:
//   Grounded on internal/worker/worker.go's "register, loop, execute,
//   cleanup" worker shape, generalized from "task channel" to "clock
//   barrier": each controller is always a registered clock worker for the
//   life of the simulation; Start/Stop toggle the controller's own
//   running bit, which gates whether its per-tick body actually runs,
//   rather than starting/stopping the goroutine itself (spec §4.6: "they
//   run as clock-synchronized workers; the per-tick body executes only
//   when the corresponding enable flag is true"). This running bit is
//   deliberately separate from the SharedState *_control_enabled flag:
//   ControllerManager.applyStateSettings writes that flag unconditionally
//   from an action's state_settings, but only a gate-approved
//   ControllerManager.startController call reaches Controller.Start, so a
//   denied start can leave brake_control_enabled=true in SharedState
//   (visible to anything reading it) while the worker itself never runs
//   (spec §4.5 scenario 5).
//
// ============================================================================

package controllers

import (
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// Clock is the subset of *clock.Clock a controller worker needs.
type Clock interface {
	RegisterWorker()
	UnregisterWorker()
	WaitForNextStep(lastStep int64) int64
	NotifyStepCompleted()
	IsRunning() bool
	TimeStep() float64
}

// Queue is the subset of *squeue.Queue a controller needs to enqueue
// state-update messages rather than writing SharedState directly.
type Queue interface {
	Push(types.StateUpdateMessage)
}

// State is the subset of *state.State the controllers package needs.
type State interface {
	Throttle() float64
	Brake() float64
	SetBrake(float64)
	Velocity() float64
	TargetSpeed() float64
	PitchAngle() float64
	PitchRate() float64
	SetPitchControlOutput(float64)

	ThrottleControlEnabled() bool
	SetThrottleControlEnabled(bool)
	BrakeControlEnabled() bool
	SetBrakeControlEnabled(bool)
	CruiseControlEnabled() bool
	SetCruiseControlEnabled(bool)
	PitchControlEnabled() bool
	SetPitchControlEnabled(bool)
}

// Controller is the contract every control law implements (spec §4.6):
// start, stop, is_enabled, name, current_value.
type Controller interface {
	// Run is the controller's clock-registered per-tick loop. Callers
	// launch it in its own goroutine once, at simulation start; it keeps
	// running (gated per-tick by IsEnabled) until the clock stops.
	Run()
	Start()
	Stop()
	IsEnabled() bool
	Name() string
	CurrentValue() float64
}

// runLoop is the shared clock-worker body: register, wait for each tick,
// run step only when enabled() is true, notify completion, unregister on
// exit (including panic recovery), matching spec §4.1's "scoped release".
func runLoop(name string, c Clock, enabled func() bool, step func(dt float64), log *slog.Logger) {
	c.RegisterWorker()
	defer c.UnregisterWorker()

	defer func() {
		if r := recover(); r != nil {
			log.Error("controller panic recovered", "controller", name, "panic", r)
		}
	}()

	var lastStep int64
	for {
		s := c.WaitForNextStep(lastStep)
		if !c.IsRunning() {
			return
		}
		lastStep = s

		if enabled() {
			step(c.TimeStep())
		}

		c.NotifyStepCompleted()
	}
}

func loadFloat(a *atomic.Uint64) float64     { return math.Float64frombits(a.Load()) }
func storeFloat(a *atomic.Uint64, v float64) { a.Store(math.Float64bits(v)) }

func saturate(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
