// ============================================================================
// AeroSim Shared State - Concurrent Vehicle State Cell
// ============================================================================
//
// Package: internal/state
// File: state.go
// Purpose: Concurrent-safe storage of every scalar field of the vehicle and
//          simulation status, plus a versioned coherent snapshot.
//
// Design:
//   Two complementary write paths, both required by spec:
//
//   1. Direct atomic scalars - lock-free stores/loads (acquire/release via
//      sync/atomic) used by controllers and the integrator for single-field
//      updates that don't need cross-field coherence (e.g. the brake
//      controller's direct write).
//
//   2. Versioned snapshot commit - snapshotMu-guarded {lock, copy-in, bump
//      version, unlock} used by the state manager once per tick to apply a
//      coherent multi-field batch (position+velocity+acceleration together)
//      and bump state_version exactly once per commit.
//
//   This mirrors the "lock, copy, bump version, unlock" discipline of
//   internal/snapshot/snapshot_manager.go's Write/Load, adapted in-memory
//   (no disk I/O: persistence beyond flat logs is out of scope), alongside
//   the map+mutex bookkeeping style of internal/jobmanager/job_manager.go
//   for the non-coherent flag set (lifecycle/enable/authority/mode).
//
// ============================================================================

package state

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// ErrInitFailed is returned by New when the caller-supplied init hook fails.
// Per spec §7, this is the one Fatal error kind: the scenario aborts before
// any worker starts.
var ErrInitFailed = errors.New("state: initialization hook failed")

// InitHook seeds initial field values before the state is marked ready.
type InitHook func(*State) error

// State is the shared, concurrently-accessed vehicle/simulation state cell.
type State struct {
	// Kinematics
	position     atomic.Uint64
	velocity     atomic.Uint64
	acceleration atomic.Uint64

	// Controls
	throttle atomic.Uint64
	brake    atomic.Uint64

	// Forces
	thrust     atomic.Uint64
	dragForce  atomic.Uint64
	brakeForce atomic.Uint64

	// Attitude
	pitchAngle      atomic.Uint64
	pitchRate       atomic.Uint64
	pitchControlOut atomic.Uint64

	// Clock mirror
	simulationTime atomic.Uint64

	// Lifecycle flags
	simulationRunning atomic.Bool
	simulationStarted atomic.Bool
	userConfirmed     atomic.Bool
	systemReady       atomic.Bool
	finalStopEnabled  atomic.Bool

	// Controller-enable flags
	throttleControlEnabled atomic.Bool
	brakeControlEnabled    atomic.Bool
	cruiseControlEnabled   atomic.Bool
	pitchControlEnabled    atomic.Bool

	// Targets
	targetSpeed         atomic.Uint64
	abortSpeed          atomic.Uint64
	abortSpeedThreshold atomic.Uint64

	// Mode + authority, updated as one atomic group under modeMu.
	modeMu    sync.Mutex
	mode      types.FlightMode
	authority types.Authority

	// Versioned snapshot commit path.
	snapshotMu sync.Mutex
	version    atomic.Uint64
}

// New constructs a State. If hook is non-nil it runs before system_ready is
// set; a failing hook aborts construction with ErrInitFailed, matching
// spec §4.2's "construction returns success only after basic initialization".
func New(hook InitHook) (*State, error) {
	s := &State{mode: types.ModeManual, authority: types.ForAuthority(types.ModeManual)}
	if hook != nil {
		if err := hook(s); err != nil {
			return nil, errors.Join(ErrInitFailed, err)
		}
	}
	s.systemReady.Store(true)
	return s, nil
}

func loadFloat(a *atomic.Uint64) float64  { return math.Float64frombits(a.Load()) }
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

// --- Kinematics ---

func (s *State) Position() float64 { return loadFloat(&s.position) }
func (s *State) SetPosition(v float64) { storeFloat(&s.position, v) }

func (s *State) Velocity() float64 { return loadFloat(&s.velocity) }

// SetVelocity clamps velocity to zero when it would go negative, per the
// spec invariant "when velocity <= 0 after a tick it is clamped to 0".
func (s *State) SetVelocity(v float64) {
	if v < 0 {
		v = 0
	}
	storeFloat(&s.velocity, v)
}

func (s *State) Acceleration() float64 { return loadFloat(&s.acceleration) }
func (s *State) SetAcceleration(v float64) { storeFloat(&s.acceleration, v) }

// --- Controls ---

func (s *State) Throttle() float64 { return loadFloat(&s.throttle) }
func (s *State) SetThrottle(v float64) { storeFloat(&s.throttle, saturate(v, 0, 1)) }

func (s *State) Brake() float64 { return loadFloat(&s.brake) }
func (s *State) SetBrake(v float64) { storeFloat(&s.brake, saturate(v, 0, 1)) }

// --- Forces ---

func (s *State) Thrust() float64 { return loadFloat(&s.thrust) }
func (s *State) SetThrust(v float64) { storeFloat(&s.thrust, v) }

func (s *State) DragForce() float64 { return loadFloat(&s.dragForce) }
func (s *State) SetDragForce(v float64) { storeFloat(&s.dragForce, v) }

func (s *State) BrakeForce() float64 { return loadFloat(&s.brakeForce) }
func (s *State) SetBrakeForce(v float64) { storeFloat(&s.brakeForce, v) }

// --- Attitude ---

func (s *State) PitchAngle() float64 { return loadFloat(&s.pitchAngle) }
func (s *State) SetPitchAngle(v float64) { storeFloat(&s.pitchAngle, v) }

func (s *State) PitchRate() float64 { return loadFloat(&s.pitchRate) }
func (s *State) SetPitchRate(v float64) { storeFloat(&s.pitchRate, v) }

func (s *State) PitchControlOutput() float64 { return loadFloat(&s.pitchControlOut) }
func (s *State) SetPitchControlOutput(v float64) { storeFloat(&s.pitchControlOut, saturate(v, -1, 1)) }

// --- Clock mirror ---

func (s *State) SimulationTime() float64 { return loadFloat(&s.simulationTime) }
func (s *State) SetSimulationTime(v float64) { storeFloat(&s.simulationTime, v) }

// --- Lifecycle flags ---

func (s *State) SimulationRunning() bool      { return s.simulationRunning.Load() }
func (s *State) SetSimulationRunning(v bool)  { s.simulationRunning.Store(v) }
func (s *State) SimulationStarted() bool      { return s.simulationStarted.Load() }
func (s *State) SetSimulationStarted(v bool)  { s.simulationStarted.Store(v) }
func (s *State) UserConfirmed() bool          { return s.userConfirmed.Load() }
func (s *State) SetUserConfirmed(v bool)      { s.userConfirmed.Store(v) }
func (s *State) SystemReady() bool            { return s.systemReady.Load() }
func (s *State) FinalStopEnabled() bool       { return s.finalStopEnabled.Load() }
func (s *State) SetFinalStopEnabled(v bool)   { s.finalStopEnabled.Store(v) }

// --- Controller-enable flags ---

func (s *State) ThrottleControlEnabled() bool     { return s.throttleControlEnabled.Load() }
func (s *State) SetThrottleControlEnabled(v bool) { s.throttleControlEnabled.Store(v) }
func (s *State) BrakeControlEnabled() bool         { return s.brakeControlEnabled.Load() }
func (s *State) SetBrakeControlEnabled(v bool)     { s.brakeControlEnabled.Store(v) }
func (s *State) CruiseControlEnabled() bool        { return s.cruiseControlEnabled.Load() }
func (s *State) SetCruiseControlEnabled(v bool)    { s.cruiseControlEnabled.Store(v) }
func (s *State) PitchControlEnabled() bool         { return s.pitchControlEnabled.Load() }
func (s *State) SetPitchControlEnabled(v bool)     { s.pitchControlEnabled.Store(v) }

// --- Targets ---

func (s *State) TargetSpeed() float64 { return loadFloat(&s.targetSpeed) }
func (s *State) SetTargetSpeed(v float64) { storeFloat(&s.targetSpeed, v) }

func (s *State) AbortSpeed() float64 { return loadFloat(&s.abortSpeed) }
func (s *State) SetAbortSpeed(v float64) { storeFloat(&s.abortSpeed, v) }

func (s *State) AbortSpeedThreshold() float64 { return loadFloat(&s.abortSpeedThreshold) }
func (s *State) SetAbortSpeedThreshold(v float64) { storeFloat(&s.abortSpeedThreshold, v) }

// --- Mode + authority ---

// FlightMode returns the current flight mode.
func (s *State) FlightMode() types.FlightMode {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	return s.mode
}

// SetFlightMode atomically updates the mode and its four authority bits as
// one group, per spec §3's invariant.
func (s *State) SetFlightMode(mode types.FlightMode) {
	s.modeMu.Lock()
	s.mode = mode
	s.authority = types.ForAuthority(mode)
	s.modeMu.Unlock()
}

// Authority returns the current authority quadruple.
func (s *State) Authority() types.Authority {
	s.modeMu.Lock()
	defer s.modeMu.Unlock()
	return s.authority
}

// HasControlConflict reports whether pilot and auto both own a channel.
func (s *State) HasControlConflict() bool {
	return s.Authority().HasConflict()
}

// --- Versioned snapshot ---

// Snapshot returns a coherent copy of the declared subset of fields
// (kinematics, controls, forces, attitude, simulation time) plus the
// current version. Guarded by snapshotMu so it is serialized against
// concurrent CommitSnapshot calls.
func (s *State) Snapshot() types.Snapshot {
	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()
	return types.Snapshot{
		Position:        s.Position(),
		Velocity:        s.Velocity(),
		Acceleration:    s.Acceleration(),
		Throttle:        s.Throttle(),
		Brake:           s.Brake(),
		Thrust:          s.Thrust(),
		DragForce:       s.DragForce(),
		BrakeForce:      s.BrakeForce(),
		PitchAngle:      s.PitchAngle(),
		PitchRate:       s.PitchRate(),
		PitchControlOut: s.PitchControlOutput(),
		SimulationTime:  s.SimulationTime(),
		Version:         s.version.Load(),
	}
}

// CommitSnapshot replaces the declared subset of fields with newValues as
// one coherent batch and increments state_version by exactly one. This is
// the path the state manager uses once per tick after draining the
// state-update queue.
func (s *State) CommitSnapshot(newValues types.Snapshot) {
	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	s.SetPosition(newValues.Position)
	s.SetVelocity(newValues.Velocity)
	s.SetAcceleration(newValues.Acceleration)
	s.SetThrottle(newValues.Throttle)
	s.SetBrake(newValues.Brake)
	s.SetThrust(newValues.Thrust)
	s.SetDragForce(newValues.DragForce)
	s.SetBrakeForce(newValues.BrakeForce)
	s.SetPitchAngle(newValues.PitchAngle)
	s.SetPitchRate(newValues.PitchRate)
	s.SetPitchControlOutput(newValues.PitchControlOut)
	s.SetSimulationTime(newValues.SimulationTime)

	s.version.Add(1)
}

// Version returns the current state_version without taking a full snapshot.
func (s *State) Version() uint64 {
	return s.version.Load()
}
