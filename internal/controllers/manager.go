// ============================================================================
// AeroSim Controller Manager
// ============================================================================
//
// Package: internal/controllers
// File: manager.go
// Purpose: Owns the fixed roster of five controllers and translates event
//          names into controller lifecycle operations and state-flag
//          changes (spec §4.5).
//
// Design Pattern:
//   Orchestration shape grounded on internal/controller/controller.go's
//   "own every subsystem handle, run one dispatch loop, mutex-guard
//   bookkeeping" pattern, narrowed from four loops to one (dispatch), the
//   others being superseded by the clock barrier. The manager's own
//   internal FIFO + dispatch goroutine generalizes
//   internal/controller/job_source_impl.go's lock-held-during-bookkeeping
//   style: the event callback registered with the bus only marks the
//   latch and hands off to this FIFO; the actual action execution runs on
//   the manager's own goroutine, never on a bus worker.
//
// ============================================================================

package controllers

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/ChuLiYu/aerosim/internal/eventbus"
	"github.com/ChuLiYu/aerosim/pkg/types"
)

// ManagerState is the subset of *state.State the manager itself needs,
// beyond what individual controllers already require.
type ManagerState interface {
	State
	SetFlightMode(types.FlightMode)
	Authority() types.Authority
}

// Manager owns the fixed controller roster and dispatches scenario
// actions onto it.
type Manager struct {
	state ManagerState
	log   *slog.Logger

	controllers map[string]Controller

	mu            sync.Mutex
	actionConfigs map[types.ControllerAction]types.ActionConfig
	defs          []types.EventDefinition
	triggered     map[string]bool

	dispatchCh chan types.EventDefinition
	stopCh     chan struct{}
	wg         sync.WaitGroup
	started    bool

	onLifecycle func(name string, started bool)
}

// OnControllerLifecycle installs a callback invoked whenever a controller
// is started or stopped through the manager (not when it loops idle with
// its enable flag false). internal/metrics uses this to drive the
// controller_starts_total / controller_stops_total counters.
func (m *Manager) OnControllerLifecycle(fn func(name string, started bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLifecycle = fn
}

// NewManager constructs the fixed roster {throttle_inc, throttle_dec,
// brake, cruise_runway, pitch_hold} wired to the given clock, queue and
// state.
func NewManager(c Clock, q Queue, s ManagerState) *Manager {
	m := &Manager{
		state:         s,
		log:           slog.Default().With("component", "controller_manager"),
		actionConfigs: make(map[types.ControllerAction]types.ActionConfig),
		triggered:     make(map[string]bool),
		dispatchCh:    make(chan types.EventDefinition, 64),
		stopCh:        make(chan struct{}),
	}

	throttleInc := NewThrottleIncrease(c, q, s)
	throttleDec := NewThrottleDecrease(c, q, s)
	brake := NewBrake(c, s)
	cruise := NewCruiseRunway(c, q, s)
	pitch := NewPitchHold(c, s)

	m.controllers = map[string]Controller{
		throttleInc.Name(): throttleInc,
		throttleDec.Name(): throttleDec,
		brake.Name():       brake,
		cruise.Name():      cruise,
		pitch.Name():       pitch,
	}
	return m
}

// Controller returns the named roster member, for direct access (e.g.
// tests checking IsEnabled), and whether it exists.
func (m *Manager) Controller(name string) (Controller, bool) {
	c, ok := m.controllers[name]
	return c, ok
}

// RunAll launches every roster controller's clock worker loop in its own
// goroutine. Call once, at simulation start.
func (m *Manager) RunAll() {
	for _, c := range m.controllers {
		go c.Run()
	}
}

// SetActionConfigs loads the parsed controller_actions_config.txt table.
func (m *Manager) SetActionConfigs(cfgs map[types.ControllerAction]types.ActionConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actionConfigs = cfgs
}

// SetEventDefinitions stores the active scenario's event table.
func (m *Manager) SetEventDefinitions(defs []types.EventDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defs = defs
	m.triggered = make(map[string]bool, len(defs))
}

// SetupEventHandlers subscribes, for every event name in the active
// table, a callback that marks the event triggered on first invocation
// and hands its action list to the manager's dispatch FIFO.
func (m *Manager) SetupEventHandlers(bus *eventbus.Bus) {
	m.mu.Lock()
	defs := m.defs
	m.mu.Unlock()

	for _, def := range defs {
		def := def
		bus.Subscribe(def.Name, func(payload any) {
			m.mu.Lock()
			if m.triggered[def.Name] {
				m.mu.Unlock()
				return
			}
			m.triggered[def.Name] = true
			m.mu.Unlock()

			select {
			case m.dispatchCh <- def:
			default:
				m.log.Warn("controller manager dispatch FIFO full, dropping event", "event", def.Name)
			}
		})
	}
}

// Start launches the manager's own event-dispatch worker.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.dispatchLoop()
}

// Stop signals the dispatch worker to exit and waits for it.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	m.mu.Unlock()

	close(m.stopCh)
	m.Join()
}

// Join waits for the dispatch worker to exit.
func (m *Manager) Join() {
	m.wg.Wait()
}

func (m *Manager) dispatchLoop() {
	defer m.wg.Done()
	for {
		select {
		case <-m.stopCh:
			return
		case def := <-m.dispatchCh:
			m.executeActions(def.Actions)
		}
	}
}

// executeActions runs an event definition's ordered action list (spec
// §4.5's Action execution rule).
func (m *Manager) executeActions(actions []types.ControllerAction) {
	m.mu.Lock()
	cfgs := m.actionConfigs
	m.mu.Unlock()

	for _, action := range actions {
		cfg, ok := cfgs[action]
		if !ok {
			m.log.Warn("no action config for action, skipping", "action", action)
			continue
		}

		switch cfg.Kind {
		case types.ActionKindController:
			m.applyStateSettings(cfg.StateSettings)
			if strings.HasPrefix(string(action), "START_") {
				m.startController(cfg.ControllerName)
			} else {
				m.stopController(cfg.ControllerName)
			}
		case types.ActionKindStopAll:
			m.stopAll()
		case types.ActionKindMode:
			mode, ok := cfg.StateSettings["flight_mode"]
			if !ok {
				m.log.Warn("mode action config missing flight_mode setting", "action", action)
				continue
			}
			m.state.SetFlightMode(types.FlightMode(mode))
		default:
			m.log.Warn("unknown action kind, skipping", "action", action, "kind", cfg.Kind)
		}
	}
}

// applyStateSettings writes an action's state_settings to SharedState
// unconditionally, before startController's authority gate runs (spec
// §4.5 scenario 5): a denied start still leaves e.g. brake_control_enabled
// true in SharedState even though the controller's own running bit, and
// therefore its worker, never turns on.
func (m *Manager) applyStateSettings(settings map[string]string) {
	for key, raw := range settings {
		val, err := strconv.ParseBool(raw)
		if err != nil {
			m.log.Warn("non-boolean state setting ignored", "key", key, "value", raw)
			continue
		}
		switch key {
		case "throttle_control_enabled":
			m.state.SetThrottleControlEnabled(val)
		case "brake_control_enabled":
			m.state.SetBrakeControlEnabled(val)
		case "cruise_control_enabled":
			m.state.SetCruiseControlEnabled(val)
		case "pitch_control_enabled":
			m.state.SetPitchControlEnabled(val)
		default:
			m.log.Warn("unrecognized state setting key ignored", "key", key)
		}
	}
}

// authorityAllows implements spec §4.5's authority gate: starting
// throttle_inc/throttle_dec/cruise_runway requires auto_system_has_
// throttle_control; starting brake requires auto_system_has_brake_control.
func (m *Manager) authorityAllows(name string) bool {
	authority := m.state.Authority()
	switch name {
	case "throttle_inc", "throttle_dec", "cruise_runway":
		return authority.AutoThrottle
	case "brake":
		return authority.AutoBrake
	default:
		return true
	}
}

// startController starts the named controller if the authority gate
// allows it; a denied start is logged and is a no-op. throttle_inc and
// throttle_dec share the single throttle_control_enabled flag (spec §3
// provides no separate flag per direction), so starting one stops the
// other to keep exactly one direction driving the channel.
func (m *Manager) startController(name string) {
	c, ok := m.controllers[name]
	if !ok {
		m.log.Warn("start requested for unknown controller", "controller", name)
		return
	}
	if !m.authorityAllows(name) {
		m.log.Warn("controller start denied by authority gate", "controller", name)
		return
	}

	switch name {
	case "throttle_inc":
		m.stopController("throttle_dec")
	case "throttle_dec":
		m.stopController("throttle_inc")
	}

	c.Start()
	m.notifyLifecycle(name, true)
}

func (m *Manager) stopController(name string) {
	c, ok := m.controllers[name]
	if !ok {
		m.log.Warn("stop requested for unknown controller", "controller", name)
		return
	}
	c.Stop()
	m.notifyLifecycle(name, false)
}

func (m *Manager) stopAll() {
	for name, c := range m.controllers {
		c.Stop()
		m.notifyLifecycle(name, false)
	}
}

func (m *Manager) notifyLifecycle(name string, started bool) {
	m.mu.Lock()
	fn := m.onLifecycle
	m.mu.Unlock()
	if fn != nil {
		fn(name, started)
	}
}
