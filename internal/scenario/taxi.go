// ============================================================================
// AeroSim Scenario - Taxi
// ============================================================================
//
// Package: internal/scenario
// File: taxi.go
// Purpose: The provided "Taxi" scenario (spec §4.8): start throttle at
//          t>=1s; start braking at x>=500m; final stop when v falls to
//          the zero-velocity threshold.
//
// ============================================================================

package scenario

import "github.com/ChuLiYu/aerosim/pkg/types"

const defaultZeroVelocityThreshold = 0.05

// StateSeeder is the subset of *state.State a scenario's init function
// needs to seed initial field values.
type StateSeeder interface {
	SetTargetSpeed(float64)
	SetAbortSpeed(float64)
	SetAbortSpeedThreshold(float64)
	SetFlightMode(types.FlightMode)
}

// Taxi builds the Taxi scenario's EventDefinition table. cfg supplies
// taxi_start_time, brake_trigger_position and zero_velocity_threshold
// (falling back to defaults when absent).
func Taxi(cfg SceneConfig) []types.EventDefinition {
	zeroV := cfg.GetOrDefault("zero_velocity_threshold", defaultZeroVelocityThreshold)
	brakeTriggerPosition := cfg.GetOrDefault("brake_trigger_position", 500)
	taxiStartTime := cfg.GetOrDefault("taxi_start_time", 1.0)

	return []types.EventDefinition{
		{
			Name:        "taxi_start_throttle",
			Description: "begin throttle increase once the scenario clock reaches taxi_start_time",
			Predicate: func(s types.Snapshot) bool {
				return s.SimulationTime >= taxiStartTime
			},
			Actions: []types.ControllerAction{types.ActionStartThrottleIncrease},
		},
		{
			Name:        "taxi_start_braking",
			Description: "stop throttle increase, begin throttle decrease and braking once position reaches brake_trigger_position",
			Predicate: func(s types.Snapshot) bool {
				return s.Position >= brakeTriggerPosition
			},
			Actions: []types.ControllerAction{types.ActionStopThrottleIncrease, types.ActionStartThrottleDecrease, types.ActionStartBrake},
		},
		{
			Name:        "taxi_final_stop",
			Description: "stop all controllers once velocity has decayed to the zero-velocity threshold",
			Predicate: func(s types.Snapshot) bool {
				return s.Position >= brakeTriggerPosition && s.Velocity <= zeroV
			},
			Actions: []types.ControllerAction{types.ActionStopAllControllers, types.ActionSwitchToManualMode},
		},
	}
}

// TaxiInit seeds SharedState for a Taxi run: auto mode owns both
// channels, and target_speed is not used by Taxi's throttle/brake
// open-loop control law but is seeded anyway so cruise_runway could be
// substituted without reconfiguration.
func TaxiInit(s StateSeeder, cfg SceneConfig) {
	s.SetFlightMode(types.ModeAuto)
	s.SetTargetSpeed(cfg.GetOrDefault("target_speed", 0))
}
