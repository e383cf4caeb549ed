// ============================================================================
// AeroSim Scenario - Abort Takeoff
// ============================================================================
//
// Package: internal/scenario
// File: abort.go
// Purpose: The provided "Abort Takeoff" scenario (spec §4.8): adds an
//          abort-at-speed event and a cruise-after-abort event keyed on
//          position and the abort latch.
//
// Abort Latch:
//   EventDefinition.Predicate is a pure function of a Snapshot, which
//   carries no event-latch bits. cruise_after_abort's "keyed on ... the
//   abort latch" requirement is satisfied by taking a read-only
//   abortLatched query function at construction time (wired by
//   internal/sim to internal/eventbus.Monitor.HasFired), rather than by
//   widening Snapshot to carry monitor state.
//
// ============================================================================

package scenario

import "github.com/ChuLiYu/aerosim/pkg/types"

// AbortTakeoff builds the Abort Takeoff scenario's EventDefinition
// table. abortLatched must report whether the abort_at_speed event has
// already fired; cruise_after_abort only evaluates true once it has.
func AbortTakeoff(cfg SceneConfig, abortLatched func() bool) []types.EventDefinition {
	base := Taxi(cfg)

	abortSpeed := cfg.GetOrDefault("abort_speed", 60)
	abortThreshold := cfg.GetOrDefault("abort_speed_threshold", 0.5)
	postAbortPosition := cfg.GetOrDefault("brake_trigger_position", 500) * 0.6

	abortEvents := []types.EventDefinition{
		{
			Name:        "abort_at_speed",
			Description: "abort the takeoff roll once velocity reaches abort_speed",
			Predicate: func(s types.Snapshot) bool {
				return s.Velocity >= abortSpeed-abortThreshold
			},
			Actions: []types.ControllerAction{
				types.ActionStopThrottleIncrease,
				types.ActionStartBrake,
				types.ActionSwitchToAutoMode,
			},
		},
		{
			Name:        "cruise_after_abort",
			Description: "once aborted and past the post-abort position, hold speed under cruise_runway",
			Predicate: func(s types.Snapshot) bool {
				if !abortLatched() {
					return false
				}
				return s.Position >= postAbortPosition
			},
			Actions: []types.ControllerAction{types.ActionStopBrake, types.ActionStartCruise},
		},
	}

	return append(base, abortEvents...)
}

// AbortTakeoffInit seeds SharedState for an Abort Takeoff run.
func AbortTakeoffInit(s StateSeeder, cfg SceneConfig) {
	TaxiInit(s, cfg)
	s.SetAbortSpeed(cfg.GetOrDefault("abort_speed", 60))
	s.SetAbortSpeedThreshold(cfg.GetOrDefault("abort_speed_threshold", 0.5))
}
