// ============================================================================
// AeroSim Controllers - Pitch Hold (PID)
// ============================================================================
//
// Package: internal/controllers
// File: pitch.go
// Purpose: pitch_hold control law (spec §4.6 row 5): a full PID holding
//          pitch_angle at a commanded target, with an integral clamp and
//          a clock-sourced dt (SPEC_FULL §9 Open Question: PitchHold
//          reads clock.TimeStep() every tick instead of a hardcoded 0.01).
//
// ============================================================================

package controllers

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

const integralClamp = 10.0

// PitchHold implements the pitch_hold PID control law.
type PitchHold struct {
	clock   Clock
	state   State
	log     *slog.Logger
	running atomic.Bool

	mu         sync.Mutex
	kp, ki, kd float64
	target     float64
	integral   float64
	prevError  float64
	hasPrev    bool
}

// NewPitchHold constructs the pitch_hold controller with neutral gains.
// Callers configure gains via SetPID and a target via SetTargetPitch.
func NewPitchHold(c Clock, s State) *PitchHold {
	return &PitchHold{clock: c, state: s, log: slog.Default().With("controller", "pitch_hold")}
}

func (p *PitchHold) Name() string         { return "pitch_hold" }
func (p *PitchHold) IsEnabled() bool       { return p.running.Load() }
func (p *PitchHold) Start()                { p.running.Store(true) }
func (p *PitchHold) Stop()                 { p.running.Store(false) }
func (p *PitchHold) CurrentValue() float64 { return p.state.PitchAngle() }

// SetPID updates the proportional, integral and derivative gains.
func (p *PitchHold) SetPID(kp, ki, kd float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.kp, p.ki, p.kd = kp, ki, kd
}

// SetTargetPitch updates the commanded pitch angle, in degrees.
func (p *PitchHold) SetTargetPitch(target float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.target = target
}

// ResetIntegral zeroes the accumulated integral term and the derivative
// history, used when the controller is re-armed after being stopped.
func (p *PitchHold) ResetIntegral() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.integral = 0
	p.prevError = 0
	p.hasPrev = false
}

// Run executes the pitch_hold clock worker loop.
func (p *PitchHold) Run() {
	runLoop(p.Name(), p.clock, p.IsEnabled, p.step, p.log)
}

func (p *PitchHold) step(dt float64) {
	if dt <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	errv := p.target - p.state.PitchAngle()

	p.integral += p.ki * errv * dt
	p.integral = saturate(p.integral, -integralClamp, integralClamp)

	var derivative float64
	if p.hasPrev {
		derivative = p.kd * (errv - p.prevError) / dt
	}
	p.prevError = errv
	p.hasPrev = true

	output := saturate(p.kp*errv+p.integral+derivative, -1, 1)
	p.state.SetPitchControlOutput(output)
}
