// ============================================================================
// AeroSim Dynamics - Integrator
// ============================================================================
//
// Package: internal/dynamics
// File: integrator.go
// Purpose: Clock-synchronized worker implementing spec §4.7's six-step
//          per-tick body: evaluate the force model, commit forces,
//          semi-implicit Euler integration, enqueue kinematics.
//
// Design Pattern:
//   Grounded on internal/worker/worker.go's execute-with-context shape,
//   generalized from "simulate CPU work" to "evaluate force model and
//   integrate one step", and on internal/worker/worker_pool.go's
//   register/loop/unregister clock-worker skeleton.
//
// ============================================================================

package dynamics

import (
	"log/slog"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// Clock is the subset of *clock.Clock the integrator needs.
type Clock interface {
	RegisterWorker()
	UnregisterWorker()
	WaitForNextStep(lastStep int64) int64
	NotifyStepCompleted()
	IsRunning() bool
	TimeStep() float64
	CurrentTime() float64
}

// Queue is the subset of *squeue.Queue the integrator needs.
type Queue interface {
	Push(types.StateUpdateMessage)
}

// State is the subset of *state.State the integrator needs.
type State interface {
	Velocity() float64
	Position() float64
	Throttle() float64
	Brake() float64
	SetThrust(float64)
	SetDragForce(float64)
	SetBrakeForce(float64)
	SetSimulationTime(float64)
}

// Integrator is the dynamics integrator clock worker.
type Integrator struct {
	clock Clock
	queue Queue
	state State
	model Model
	cfg   types.VehicleConfig
	log   *slog.Logger
}

// New constructs an Integrator using the given force Model and vehicle
// configuration. model must not be nil; pass LinearModel{} for the
// required linear variant.
func New(c Clock, q Queue, s State, model Model, cfg types.VehicleConfig) *Integrator {
	return &Integrator{
		clock: c,
		queue: q,
		state: s,
		model: model,
		cfg:   cfg,
		log:   slog.Default().With("component", "dynamics_integrator"),
	}
}

// Run executes the integrator's per-tick loop until the clock stops.
func (i *Integrator) Run() {
	i.clock.RegisterWorker()
	defer i.clock.UnregisterWorker()

	defer func() {
		if r := recover(); r != nil {
			i.log.Error("dynamics integrator panic recovered", "panic", r)
		}
	}()

	var lastStep int64
	for {
		step := i.clock.WaitForNextStep(lastStep)
		if !i.clock.IsRunning() {
			return
		}
		lastStep = step

		i.tick()

		i.clock.NotifyStepCompleted()
	}
}

func (i *Integrator) tick() {
	dt := i.clock.TimeStep()
	t := i.clock.CurrentTime()

	v := i.state.Velocity()
	x := i.state.Position()
	throttle := i.state.Throttle()
	brake := i.state.Brake()

	forces := i.model.Compute(t, v, throttle, brake, i.cfg)

	i.state.SetThrust(forces.Thrust)
	i.state.SetDragForce(forces.Drag)
	i.state.SetBrakeForce(forces.BrakeForce)

	a := forces.NetForce / i.cfg.Mass
	newV := v + a*dt
	if newV < 0 {
		newV = 0
	}
	newX := x + v*dt // semi-implicit Euler: position uses pre-step velocity

	i.queue.Push(types.StateUpdateMessage{Kind: types.UpdateVelocity, Value: newV})
	i.queue.Push(types.StateUpdateMessage{Kind: types.UpdatePosition, Value: newX})
	i.queue.Push(types.StateUpdateMessage{Kind: types.UpdateAcceleration, Value: a})

	i.state.SetSimulationTime(t)
}
