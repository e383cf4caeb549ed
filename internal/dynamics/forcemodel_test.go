package dynamics

import (
	"testing"

	"github.com/ChuLiYu/aerosim/pkg/types"
	"github.com/stretchr/testify/assert"
)

func testConfig() types.VehicleConfig {
	return types.VehicleConfig{
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

func TestLinearModelStaticFrictionHoldsBelowThreshold(t *testing.T) {
	m := LinearModel{}
	cfg := testConfig()

	forces := m.Compute(0, 0, 0, 0, cfg)
	assert.Equal(t, 0.0, forces.NetForce, "zero throttle at rest should not move")
	assert.Greater(t, forces.StaticFriction, 0.0)
}

func TestLinearModelOvercomesStaticFrictionWithThrottle(t *testing.T) {
	m := LinearModel{}
	cfg := testConfig()

	forces := m.Compute(0, 0, 1.0, 0, cfg)
	expectedFriction := cfg.StaticFriction * cfg.Mass * cfg.Gravity
	assert.Greater(t, forces.NetForce, 0.0)
	assert.InDelta(t, cfg.MaxThrust-expectedFriction, forces.NetForce, 1e-6)
}

func TestLinearModelDragOpposesForwardMotion(t *testing.T) {
	m := LinearModel{}
	cfg := testConfig()

	forces := m.Compute(0, 20, 0.5, 0, cfg)
	assert.Greater(t, forces.Drag, 0.0)
	assert.Less(t, forces.NetForce, forces.Thrust)
}

func TestLinearModelBrakeForceScalesWithSpeedFactor(t *testing.T) {
	m := LinearModel{}
	cfg := testConfig()

	slow := m.Compute(0, 5, 0, 1.0, cfg)
	fast := m.Compute(0, 60, 0, 1.0, cfg)

	assert.Greater(t, fast.BrakeForce, slow.BrakeForce)
}

func TestNonLinearModelStaysCloseToLinearBaseline(t *testing.T) {
	linear := LinearModel{}
	nonlinear := NonLinearModel{}
	cfg := testConfig()

	lf := linear.Compute(1.0, 10, 0.5, 0, cfg)
	nf := nonlinear.Compute(1.0, 10, 0.5, 0, cfg)

	assert.InDelta(t, lf.Thrust, nf.Thrust, lf.Thrust*0.1)
	assert.InDelta(t, lf.Drag, nf.Drag, lf.Drag*0.2)
}
