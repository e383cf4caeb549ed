// ============================================================================
// AeroSim Dynamics - Force Model
// ============================================================================
//
// Package: internal/dynamics
// File: forcemodel.go
// Purpose: Pure force-law evaluation (spec §4.7 step 2): thrust, drag,
//          brake force, static friction and the resulting net force for a
//          given velocity and control inputs.
//
// Drag Sign Convention (SPEC_FULL §9 Open Question, resolved):
//   drag = 0.5*rho*A*Cd*|v|*v always opposes the direction of travel: for
//   v>0 it subtracts from net force; for v<0 it adds to net force. This is
//   the reference-implementation convention (v*|v| has v's sign).
//
// ============================================================================

package dynamics

import (
	"math"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

const zeroVelocityThreshold = 0.01

// Forces holds one tick's force-model outputs.
type Forces struct {
	Thrust         float64
	Drag           float64
	BrakeForce     float64
	StaticFriction float64
	NetForce       float64
}

// Model computes Forces for the given velocity, control inputs and
// vehicle configuration. t is the elapsed simulation time, consumed only
// by variants that add time-varying perturbations.
type Model interface {
	Compute(t, v, throttle, brake float64, cfg types.VehicleConfig) Forces
}

// LinearModel implements the required linear force law (spec §4.7 step 2,
// linear variant). Every implementation must provide this variant.
type LinearModel struct{}

// Compute implements Model for the linear force law.
func (LinearModel) Compute(_ float64, v, throttle, brake float64, cfg types.VehicleConfig) Forces {
	thrust := throttle * cfg.MaxThrust
	drag := 0.5 * cfg.AirDensity * cfg.FrontalArea * cfg.DragCoefficient * math.Abs(v) * v

	if math.Abs(v) < zeroVelocityThreshold {
		staticFriction := cfg.StaticFriction * cfg.Mass * cfg.Gravity
		netForce := thrust - drag
		if math.Abs(netForce) < staticFriction {
			netForce = 0
		} else if netForce > 0 {
			netForce -= staticFriction
		} else {
			netForce += staticFriction
		}
		return Forces{Thrust: thrust, Drag: drag, BrakeForce: 0, StaticFriction: staticFriction, NetForce: netForce}
	}

	speedFactor := clamp(math.Abs(v)/50, 0.3, 1)
	brakeForce := brake * cfg.MaxBrake * speedFactor
	netForce := thrust - drag - brakeForce
	return Forces{Thrust: thrust, Drag: drag, BrakeForce: brakeForce, StaticFriction: 0, NetForce: netForce}
}

// NonLinearModel is the optional variant (spec §4.7: "implementations MAY
// provide it as a selectable model"): it layers small sinusoidal
// perturbations onto thrust and the drag coefficient to emulate engine
// ripple and atmospheric gust noise.
type NonLinearModel struct {
	// ThrustRippleAmplitude and DragRippleAmplitude default to 0.02 (2%)
	// and 0.05 (5%) respectively when left zero.
	ThrustRippleAmplitude float64
	DragRippleAmplitude   float64
	RippleFrequencyHz     float64
}

// Compute implements Model for the non-linear force law.
func (n NonLinearModel) Compute(t, v, throttle, brake float64, cfg types.VehicleConfig) Forces {
	thrustAmp := n.ThrustRippleAmplitude
	if thrustAmp == 0 {
		thrustAmp = 0.02
	}
	dragAmp := n.DragRippleAmplitude
	if dragAmp == 0 {
		dragAmp = 0.05
	}
	freq := n.RippleFrequencyHz
	if freq == 0 {
		freq = 2.0
	}

	thrustRipple := 1 + thrustAmp*math.Sin(2*math.Pi*freq*t)
	dragRipple := 1 + dragAmp*math.Sin(2*math.Pi*freq*t+math.Pi/4)

	perturbedCfg := cfg
	perturbedCfg.DragCoefficient = cfg.DragCoefficient * dragRipple

	linear := LinearModel{}
	forces := linear.Compute(t, v, throttle, brake, perturbedCfg)
	forces.Thrust *= thrustRipple

	// Recompute net force with the rippled thrust; the static-friction
	// special case in LinearModel.Compute already used the unrippled
	// thrust, so redo the net-force math of both branches here to stay
	// consistent with the rippled value.
	if math.Abs(v) < zeroVelocityThreshold {
		staticFriction := cfg.StaticFriction * cfg.Mass * cfg.Gravity
		netForce := forces.Thrust - forces.Drag
		if math.Abs(netForce) < staticFriction {
			netForce = 0
		} else if netForce > 0 {
			netForce -= staticFriction
		} else {
			netForce += staticFriction
		}
		forces.NetForce = netForce
	} else {
		forces.NetForce = forces.Thrust - forces.Drag - forces.BrakeForce
	}

	return forces
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
