package controllers

import (
	"sync"
	"testing"
	"time"

	"github.com/ChuLiYu/aerosim/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives a single worker one tick at a time under test control,
// avoiding a dependency on the real barrier's timing in unit tests.
type fakeClock struct {
	mu      sync.Mutex
	step    int64
	running bool
	dt      float64
}

func newFakeClock(dt float64) *fakeClock { return &fakeClock{running: true, dt: dt} }

func (f *fakeClock) RegisterWorker()   {}
func (f *fakeClock) UnregisterWorker() {}
func (f *fakeClock) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}
func (f *fakeClock) TimeStep() float64 { return f.dt }
func (f *fakeClock) NotifyStepCompleted() {}

func (f *fakeClock) WaitForNextStep(lastStep int64) int64 {
	for {
		f.mu.Lock()
		if f.step > lastStep || !f.running {
			s := f.step
			f.mu.Unlock()
			return s
		}
		f.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
}

func (f *fakeClock) advance() {
	f.mu.Lock()
	f.step++
	f.mu.Unlock()
}

func (f *fakeClock) stop() {
	f.mu.Lock()
	f.running = false
	f.mu.Unlock()
}

type fakeQueue struct {
	mu       sync.Mutex
	messages []types.StateUpdateMessage
}

func (q *fakeQueue) Push(msg types.StateUpdateMessage) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, msg)
}

func (q *fakeQueue) last() (types.StateUpdateMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return types.StateUpdateMessage{}, false
	}
	return q.messages[len(q.messages)-1], true
}

type fakeState struct {
	mu          sync.Mutex
	throttle    float64
	brake       float64
	velocity    float64
	targetSpeed float64
	pitchAngle  float64
	pitchRate   float64
	pitchOut    float64

	throttleEnabled bool
	brakeEnabled    bool
	cruiseEnabled   bool
	pitchEnabled    bool

	mode      types.FlightMode
	authority types.Authority
}

func newFakeState() *fakeState {
	return &fakeState{mode: types.ModeAuto, authority: types.ForAuthority(types.ModeAuto)}
}

func (s *fakeState) Throttle() float64 { s.mu.Lock(); defer s.mu.Unlock(); return s.throttle }
func (s *fakeState) Brake() float64    { s.mu.Lock(); defer s.mu.Unlock(); return s.brake }
func (s *fakeState) SetBrake(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brake = v
}
func (s *fakeState) Velocity() float64    { s.mu.Lock(); defer s.mu.Unlock(); return s.velocity }
func (s *fakeState) TargetSpeed() float64 { s.mu.Lock(); defer s.mu.Unlock(); return s.targetSpeed }
func (s *fakeState) PitchAngle() float64  { s.mu.Lock(); defer s.mu.Unlock(); return s.pitchAngle }
func (s *fakeState) PitchRate() float64   { s.mu.Lock(); defer s.mu.Unlock(); return s.pitchRate }
func (s *fakeState) SetPitchControlOutput(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitchOut = v
}

func (s *fakeState) ThrottleControlEnabled() bool { s.mu.Lock(); defer s.mu.Unlock(); return s.throttleEnabled }
func (s *fakeState) SetThrottleControlEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.throttleEnabled = v
}
func (s *fakeState) BrakeControlEnabled() bool { s.mu.Lock(); defer s.mu.Unlock(); return s.brakeEnabled }
func (s *fakeState) SetBrakeControlEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brakeEnabled = v
}
func (s *fakeState) CruiseControlEnabled() bool { s.mu.Lock(); defer s.mu.Unlock(); return s.cruiseEnabled }
func (s *fakeState) SetCruiseControlEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cruiseEnabled = v
}
func (s *fakeState) PitchControlEnabled() bool { s.mu.Lock(); defer s.mu.Unlock(); return s.pitchEnabled }
func (s *fakeState) SetPitchControlEnabled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pitchEnabled = v
}

func (s *fakeState) SetFlightMode(mode types.FlightMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.authority = types.ForAuthority(mode)
}
func (s *fakeState) Authority() types.Authority { s.mu.Lock(); defer s.mu.Unlock(); return s.authority }

func TestThrottleIncreaseEnqueuesWhenEnabled(t *testing.T) {
	c := newFakeClock(0.1)
	q := &fakeQueue{}
	st := newFakeState()
	ti := NewThrottleIncrease(c, q, st)

	go ti.Run()
	ti.Start()

	c.advance()
	require.Eventually(t, func() bool {
		_, ok := q.last()
		return ok
	}, time.Second, time.Millisecond)

	msg, _ := q.last()
	assert.Equal(t, types.UpdateThrottle, msg.Kind)
	assert.InDelta(t, 0.01, msg.Value, 1e-9)

	c.stop()
}

func TestThrottleIncreaseSkipsWhenDisabled(t *testing.T) {
	c := newFakeClock(0.1)
	q := &fakeQueue{}
	st := newFakeState()
	ti := NewThrottleIncrease(c, q, st)

	go ti.Run()
	c.advance()
	time.Sleep(20 * time.Millisecond)

	_, ok := q.last()
	assert.False(t, ok)

	c.stop()
}

func TestBrakeDirectWriteSaturatesAtOne(t *testing.T) {
	c := newFakeClock(1.0)
	st := newFakeState()
	st.brake = 0.95
	b := NewBrake(c, st)

	go b.Run()
	b.Start()
	c.advance()

	require.Eventually(t, func() bool { return st.Brake() == 1 }, time.Second, time.Millisecond)
	c.stop()
}

func TestCruiseRunwayAppliesThrottleWhenBelowTarget(t *testing.T) {
	c := newFakeClock(0.1)
	q := &fakeQueue{}
	st := newFakeState()
	st.targetSpeed = 10
	st.velocity = 4
	cr := NewCruiseRunway(c, q, st)

	go cr.Run()
	cr.Start()
	c.advance()

	require.Eventually(t, func() bool {
		_, ok := q.last()
		return ok
	}, time.Second, time.Millisecond)

	msg, _ := q.last()
	assert.Equal(t, types.UpdateThrottle, msg.Kind)
	assert.Greater(t, msg.Value, 0.0)
	assert.Equal(t, 0.0, st.Brake())

	c.stop()
}

func TestCruiseRunwayAppliesBrakeWhenAboveTarget(t *testing.T) {
	c := newFakeClock(0.1)
	q := &fakeQueue{}
	st := newFakeState()
	st.targetSpeed = 10
	st.velocity = 20
	cr := NewCruiseRunway(c, q, st)

	go cr.Run()
	cr.Start()
	c.advance()

	require.Eventually(t, func() bool { return st.Brake() > 0 }, time.Second, time.Millisecond)
	c.stop()
}

func TestPitchHoldProducesBoundedOutput(t *testing.T) {
	c := newFakeClock(0.1)
	st := newFakeState()
	st.pitchAngle = 0
	p := NewPitchHold(c, st)
	p.SetPID(0.5, 0.1, 0.05)
	p.SetTargetPitch(5)

	go p.Run()
	p.Start()

	for i := 0; i < 5; i++ {
		c.advance()
		time.Sleep(5 * time.Millisecond)
	}

	out := st.pitchOut
	assert.GreaterOrEqual(t, out, -1.0)
	assert.LessOrEqual(t, out, 1.0)
	assert.Greater(t, out, 0.0)

	c.stop()
}

func TestPitchHoldResetIntegralClearsAccumulator(t *testing.T) {
	c := newFakeClock(0.1)
	st := newFakeState()
	p := NewPitchHold(c, st)
	p.SetPID(0, 1, 0)
	p.SetTargetPitch(1)

	go p.Run()
	p.Start()
	c.advance()
	time.Sleep(20 * time.Millisecond)

	require.Greater(t, p.integral, 0.0)
	p.ResetIntegral()
	p.mu.Lock()
	integral := p.integral
	p.mu.Unlock()
	assert.Equal(t, 0.0, integral)

	c.stop()
}

func TestManagerAuthorityGateDeniesStartWithoutAutoThrottle(t *testing.T) {
	c := newFakeClock(0.1)
	q := &fakeQueue{}
	st := newFakeState()
	st.SetFlightMode(types.ModeManual) // pilot-only: no auto throttle authority

	mgr := NewManager(c, q, st)
	mgr.SetActionConfigs(map[types.ControllerAction]types.ActionConfig{
		types.ActionStartThrottleIncrease: {
			Name: types.ActionStartThrottleIncrease, ControllerName: "throttle_inc", Kind: types.ActionKindController,
			StateSettings: map[string]string{"throttle_control_enabled": "true"},
		},
	})

	mgr.executeActions([]types.ControllerAction{types.ActionStartThrottleIncrease})

	ctrl, _ := mgr.Controller("throttle_inc")
	assert.False(t, ctrl.IsEnabled(), "authority gate must deny the start")
	assert.True(t, st.ThrottleControlEnabled(), "state_settings still apply even though the worker did not start")
}

func TestManagerStartingThrottleIncStopsThrottleDec(t *testing.T) {
	c := newFakeClock(0.1)
	q := &fakeQueue{}
	st := newFakeState()
	st.SetFlightMode(types.ModeAuto)

	mgr := NewManager(c, q, st)
	mgr.SetActionConfigs(map[types.ControllerAction]types.ActionConfig{
		types.ActionStartThrottleDecrease: {Name: types.ActionStartThrottleDecrease, ControllerName: "throttle_dec", Kind: types.ActionKindController},
		types.ActionStartThrottleIncrease: {Name: types.ActionStartThrottleIncrease, ControllerName: "throttle_inc", Kind: types.ActionKindController},
	})

	mgr.executeActions([]types.ControllerAction{types.ActionStartThrottleDecrease})
	dec, _ := mgr.Controller("throttle_dec")
	require.True(t, dec.IsEnabled())

	mgr.executeActions([]types.ControllerAction{types.ActionStartThrottleIncrease})
	inc, _ := mgr.Controller("throttle_inc")
	assert.True(t, inc.IsEnabled())
	assert.False(t, dec.IsEnabled())
}

func TestManagerStopAllStopsEveryController(t *testing.T) {
	c := newFakeClock(0.1)
	q := &fakeQueue{}
	st := newFakeState()
	st.SetFlightMode(types.ModeAuto)

	mgr := NewManager(c, q, st)
	mgr.SetActionConfigs(map[types.ControllerAction]types.ActionConfig{
		types.ActionStartBrake:         {Name: types.ActionStartBrake, ControllerName: "brake", Kind: types.ActionKindController},
		types.ActionStopAllControllers: {Name: types.ActionStopAllControllers, Kind: types.ActionKindStopAll},
	})

	mgr.executeActions([]types.ControllerAction{types.ActionStartBrake})
	brake, _ := mgr.Controller("brake")
	require.True(t, brake.IsEnabled())

	mgr.executeActions([]types.ControllerAction{types.ActionStopAllControllers})
	for name, ctrl := range mgr.controllers {
		assert.False(t, ctrl.IsEnabled(), "controller %s should be stopped", name)
	}
}

func TestManagerModeActionSwitchesFlightMode(t *testing.T) {
	c := newFakeClock(0.1)
	q := &fakeQueue{}
	st := newFakeState()
	st.SetFlightMode(types.ModeManual)

	mgr := NewManager(c, q, st)
	mgr.SetActionConfigs(map[types.ControllerAction]types.ActionConfig{
		types.ActionSwitchToAutoMode: {
			Name:          types.ActionSwitchToAutoMode,
			Kind:          types.ActionKindMode,
			StateSettings: map[string]string{"flight_mode": string(types.ModeAuto)},
		},
	})

	mgr.executeActions([]types.ControllerAction{types.ActionSwitchToAutoMode})
	assert.Equal(t, types.ModeAuto, st.mode)
}
