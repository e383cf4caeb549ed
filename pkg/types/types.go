// ============================================================================
// AeroSim Core Type Definitions
// ============================================================================
//
// Package: pkg/types
// Purpose: Core domain models shared by every simulator subsystem
//
// Design Principles:
//   1. Domain-Driven Design - vehicle/scenario concepts as types, not maps
//   2. Type Safety - custom types prevent primitive obsession
//   3. No behavior - this package holds data shapes only; logic lives in
//      the packages that own the corresponding lifecycle (clock, state,
//      controllers, scenario, ...)
//
// ============================================================================

// Package types defines core domain models shared across the simulator.
package types

// FlightMode selects which party (pilot, auto-system, or both) owns the
// throttle and brake channels.
type FlightMode string

const (
	ModeManual   FlightMode = "MANUAL"
	ModeAuto     FlightMode = "AUTO"
	ModeSemiAuto FlightMode = "SEMI_AUTO"
)

// UpdateKind tags a StateUpdateMessage with the field it targets.
type UpdateKind string

const (
	UpdatePosition     UpdateKind = "position"
	UpdateVelocity     UpdateKind = "velocity"
	UpdateAcceleration UpdateKind = "acceleration"
	UpdateThrottle     UpdateKind = "throttle"
	UpdateBrake        UpdateKind = "brake"
)

// StateUpdateMessage is the tagged value produced by controllers and the
// dynamics integrator and consumed by the state manager.
type StateUpdateMessage struct {
	Kind  UpdateKind
	Value float64
}

// Snapshot is the coherent, versioned subset of SharedState that commit_snapshot
// replaces atomically: kinematics, controls, forces, attitude and the clock
// mirror. Lifecycle flags, enable flags, mode and authority are NOT part of
// this coherent set (spec: "Coherence is guaranteed only for that subset").
type Snapshot struct {
	// Kinematics
	Position     float64
	Velocity     float64
	Acceleration float64

	// Controls
	Throttle float64
	Brake    float64

	// Forces
	Thrust      float64
	DragForce   float64
	BrakeForce  float64

	// Attitude
	PitchAngle        float64
	PitchRate         float64
	PitchControlOut   float64

	// Clock mirror
	SimulationTime float64

	// Version
	Version uint64
}

// Authority records which party owns each control channel. A control
// conflict exists when both pilot and auto claim the same channel.
type Authority struct {
	PilotThrottle bool
	PilotBrake    bool
	AutoThrottle  bool
	AutoBrake     bool
}

// HasConflict reports whether pilot and auto both own the same channel.
func (a Authority) HasConflict() bool {
	return (a.PilotThrottle && a.AutoThrottle) || (a.PilotBrake && a.AutoBrake)
}

// ForAuthority returns the Authority quadruple a flight-mode change must
// apply atomically, per spec: Manual -> pilot only, Auto -> auto only,
// SemiAuto -> both.
func ForAuthority(mode FlightMode) Authority {
	switch mode {
	case ModeAuto:
		return Authority{AutoThrottle: true, AutoBrake: true}
	case ModeSemiAuto:
		return Authority{PilotThrottle: true, PilotBrake: true, AutoThrottle: true, AutoBrake: true}
	default: // ModeManual
		return Authority{PilotThrottle: true, PilotBrake: true}
	}
}

// ControllerAction is the wire contract shared with controller_actions_config.txt.
type ControllerAction string

const (
	ActionStartThrottleIncrease ControllerAction = "START_THROTTLE_INCREASE"
	ActionStopThrottleIncrease  ControllerAction = "STOP_THROTTLE_INCREASE"
	ActionStartThrottleDecrease ControllerAction = "START_THROTTLE_DECREASE"
	ActionStopThrottleDecrease  ControllerAction = "STOP_THROTTLE_DECREASE"
	ActionStartBrake            ControllerAction = "START_BRAKE"
	ActionStopBrake              ControllerAction = "STOP_BRAKE"
	ActionStartCruise           ControllerAction = "START_CRUISE"
	ActionStopCruise            ControllerAction = "STOP_CRUISE"
	ActionStartPitchControl     ControllerAction = "START_PITCH_CONTROL"
	ActionStopPitchControl      ControllerAction = "STOP_PITCH_CONTROL"
	ActionSetPitchAngle         ControllerAction = "SET_PITCH_ANGLE"
	ActionStopAllControllers    ControllerAction = "STOP_ALL_CONTROLLERS"
	ActionSwitchToAutoMode      ControllerAction = "SWITCH_TO_AUTO_MODE"
	ActionSwitchToManualMode    ControllerAction = "SWITCH_TO_MANUAL_MODE"
	ActionSwitchToSemiAutoMode  ControllerAction = "SWITCH_TO_SEMI_AUTO_MODE"
)

// ActionKind classifies how an ActionConfig entry is applied.
type ActionKind string

const (
	ActionKindController ActionKind = "controller"
	ActionKindStopAll    ActionKind = "stop_all"
	ActionKindMode       ActionKind = "mode"
)

// ActionConfig is the parsed form of one controller_actions_config.txt line:
// "ACTION_NAME = controller_name, key=value[;key=value]*".
type ActionConfig struct {
	Name           ControllerAction
	ControllerName string
	StateSettings  map[string]string
	Kind           ActionKind
}

// EventDefinition is a scenario's declarative, edge-triggered rule: once its
// Predicate observes true over a Snapshot it latches and its Actions fire
// exactly once for the life of the run.
type EventDefinition struct {
	Name        string
	Description string
	Predicate   func(Snapshot) bool
	Actions     []ControllerAction
}

// VehicleConfig names the physical constants the force model and the
// controllers' saturation limits are parameterized by. Loaded from a YAML
// file (e.g. configs/ac1.yaml); not part of the bespoke text-config grammar
// since it is simulator-internal, not a scenario/action wiring concern.
type VehicleConfig struct {
	Mass             float64 `yaml:"mass"`
	MaxThrust        float64 `yaml:"max_thrust"`
	MaxBrake         float64 `yaml:"max_brake"`
	DragCoefficient  float64 `yaml:"drag_coefficient"`
	FrontalArea      float64 `yaml:"frontal_area"`
	AirDensity       float64 `yaml:"air_density"`
	StaticFriction   float64 `yaml:"static_friction"`
	Gravity          float64 `yaml:"gravity"`
}

// DefaultVehicleConfig returns the AC1 reference vehicle named in spec.md §8.
func DefaultVehicleConfig() VehicleConfig {
	return VehicleConfig{
		Mass:            80000,
		MaxThrust:       500000,
		MaxBrake:        400000,
		DragCoefficient: 0.02,
		FrontalArea:     50,
		AirDensity:      1.225,
		StaticFriction:  0.02,
		Gravity:         9.81,
	}
}
