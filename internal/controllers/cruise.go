// ============================================================================
// AeroSim Controllers - Cruise Runway Hold
// ============================================================================
//
// Package: internal/controllers
// File: cruise.go
// Purpose: cruise_runway control law (spec §4.6 row 4): a simple
//          proportional law driving throttle and brake from the speed
//          error against target_speed.
//
// ============================================================================

package controllers

import (
	"log/slog"
	"sync/atomic"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

const defaultCruiseGain = 0.5

// CruiseRunway implements the cruise_runway P-law control.
type CruiseRunway struct {
	clock Clock
	queue Queue
	state State
	log   *slog.Logger

	running  atomic.Bool
	gainBits atomic.Uint64 // math.Float64bits(K), mutable proportional gain
}

// NewCruiseRunway constructs the cruise_runway controller with the
// default proportional gain.
func NewCruiseRunway(c Clock, q Queue, s State) *CruiseRunway {
	cr := &CruiseRunway{clock: c, queue: q, state: s, log: slog.Default().With("controller", "cruise_runway")}
	cr.SetGain(defaultCruiseGain)
	return cr
}

func (c *CruiseRunway) Name() string         { return "cruise_runway" }
func (c *CruiseRunway) IsEnabled() bool       { return c.running.Load() }
func (c *CruiseRunway) Start()                { c.running.Store(true) }
func (c *CruiseRunway) Stop()                 { c.running.Store(false) }
func (c *CruiseRunway) CurrentValue() float64 { return c.state.Throttle() }

// SetGain updates the proportional gain K.
func (c *CruiseRunway) SetGain(k float64) {
	storeFloat(&c.gainBits, k)
}

// Gain returns the current proportional gain K.
func (c *CruiseRunway) Gain() float64 {
	return loadFloat(&c.gainBits)
}

// Run executes the cruise_runway clock worker loop.
func (c *CruiseRunway) Run() {
	runLoop(c.Name(), c.clock, c.IsEnabled, c.step, c.log)
}

func (c *CruiseRunway) step(float64) {
	k := c.Gain()
	errv := c.state.TargetSpeed() - c.state.Velocity()

	if errv > 0 {
		c.queue.Push(types.StateUpdateMessage{Kind: types.UpdateThrottle, Value: saturate(k*errv, 0, 1)})
		c.state.SetBrake(0)
		return
	}
	c.queue.Push(types.StateUpdateMessage{Kind: types.UpdateThrottle, Value: 0})
	c.state.SetBrake(saturate(-k*errv, 0, 1))
}
