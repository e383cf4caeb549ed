// ============================================================================
// AeroSim Controllers - Brake
// ============================================================================
//
// Package: internal/controllers
// File: brake.go
// Purpose: Brake control law (spec §4.6 row 3). Writes SharedState
//          directly - the one controller the spec calls out as a direct
//          write rather than an enqueued StateUpdateMessage.
//
// ============================================================================

package controllers

import (
	"log/slog"
	"sync/atomic"
)

// Brake implements the brake control law.
type Brake struct {
	clock   Clock
	state   State
	log     *slog.Logger
	running atomic.Bool
}

// NewBrake constructs the brake controller.
func NewBrake(c Clock, s State) *Brake {
	return &Brake{clock: c, state: s, log: slog.Default().With("controller", "brake")}
}

func (b *Brake) Name() string         { return "brake" }
func (b *Brake) IsEnabled() bool       { return b.running.Load() }
func (b *Brake) Start()                { b.running.Store(true) }
func (b *Brake) Stop()                 { b.running.Store(false) }
func (b *Brake) CurrentValue() float64 { return b.state.Brake() }

// Run executes the brake clock worker loop.
func (b *Brake) Run() {
	runLoop(b.Name(), b.clock, b.IsEnabled, b.step, b.log)
}

func (b *Brake) step(dt float64) {
	next := b.state.Brake() + 0.2*dt
	if next > 1 {
		next = 1
	}
	b.state.SetBrake(next)
}
