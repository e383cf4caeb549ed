// ============================================================================
// AeroSim Simulation Orchestrator
// ============================================================================
//
// Package: internal/sim
// File: simulation.go
// Purpose: Owns every subsystem handle and runs the full lifecycle of one
//          scenario run: construct, wire, start, watchdog, stop.
//
// Design Pattern:
//   Grounded on internal/controller/controller.go's "brain" shape - one
//   struct holding every subsystem, a constructor that wires them
//   together, Start/Stop that (in the teacher) launched four core loops.
//   Here the four core loops are the clock-registered workers
//   (squeue.Manager, eventbus.Monitor, controllers.Manager's roster,
//   dynamics.Integrator) plus a watchdog goroutine that is this package's
//   equivalent of the teacher's timeoutLoop: it polls wall-visible
//   simulation state and calls clock.Stop() on the termination
//   conditions spec.md §5 defines (runaway overspeed/overrun), since the
//   clock itself has no notion of physical bounds.
//
// ============================================================================

package sim

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ChuLiYu/aerosim/internal/clock"
	"github.com/ChuLiYu/aerosim/internal/control"
	"github.com/ChuLiYu/aerosim/internal/controllers"
	"github.com/ChuLiYu/aerosim/internal/dynamics"
	"github.com/ChuLiYu/aerosim/internal/eventbus"
	"github.com/ChuLiYu/aerosim/internal/metrics"
	"github.com/ChuLiYu/aerosim/internal/scenario"
	"github.com/ChuLiYu/aerosim/internal/squeue"
	"github.com/ChuLiYu/aerosim/internal/state"
	"github.com/ChuLiYu/aerosim/pkg/types"
)

// ScenarioKind names one of the two declarative scenarios scenario.go
// ships (spec §8). Additional scenarios only need a new case here and in
// buildEventDefinitions - the rest of the wiring is scenario-agnostic.
type ScenarioKind string

const (
	ScenarioTaxi          ScenarioKind = "taxi"
	ScenarioAbortTakeoff  ScenarioKind = "abort_takeoff"
)

// defaultWatchdogMaxPosition and defaultWatchdogMaxTime are the runaway
// guards spec §5 names: a scenario that never reaches its own terminal
// event is force-stopped past these bounds.
const (
	defaultWatchdogMaxPosition = 1500.0
	defaultWatchdogMaxTime     = 180.0
)

const watchdogPollInterval = 50 * time.Millisecond

// Config is everything a Simulation needs beyond the plumbing it builds
// for itself (clock, state, queue, bus).
type Config struct {
	Vehicle       types.VehicleConfig
	Scene         scenario.SceneConfig
	ActionConfigs map[types.ControllerAction]types.ActionConfig
	Scenario      ScenarioKind
	TimeStep      float64

	WatchdogMaxPosition float64
	WatchdogMaxTime     float64

	NonLinearModel bool
}

// Simulation owns every subsystem for one scenario run.
type Simulation struct {
	cfg Config

	clock   *clock.Clock
	state   *state.State
	queue   *squeue.Queue
	bus     *eventbus.Bus
	monitor *eventbus.Monitor

	squeueMgr  *squeue.Manager
	manager    *controllers.Manager
	integrator *dynamics.Integrator

	collector *metrics.Collector

	log *slog.Logger

	watchdogStop chan struct{}
	watchdogWg   sync.WaitGroup
	stopOnce     sync.Once

	clockDone chan struct{}
	clockErr  error

	signalSources []control.SignalSource
}

// New constructs a Simulation wired for cfg.Scenario. recorder (may be
// nil) receives one LogTick call per tick, chained before collector's own
// vehicle-stats update.
func New(cfg Config, recorder squeue.TickLogger, collector *metrics.Collector) (*Simulation, error) {
	if cfg.TimeStep <= 0 {
		return nil, fmt.Errorf("sim: time step must be positive, got %v", cfg.TimeStep)
	}
	if cfg.WatchdogMaxPosition <= 0 {
		cfg.WatchdogMaxPosition = defaultWatchdogMaxPosition
	}
	if cfg.WatchdogMaxTime <= 0 {
		cfg.WatchdogMaxTime = defaultWatchdogMaxTime
	}

	log := slog.Default().With("component", "sim")

	c := clock.New(cfg.TimeStep)

	var initErr error
	st, err := state.New(func(s *state.State) error {
		s.SetFlightMode(types.ModeAuto)
		switch cfg.Scenario {
		case ScenarioTaxi:
			scenario.TaxiInit(s, cfg.Scene)
		case ScenarioAbortTakeoff:
			scenario.AbortTakeoffInit(s, cfg.Scene)
		default:
			initErr = fmt.Errorf("sim: unknown scenario %q", cfg.Scenario)
			return initErr
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sim: constructing state: %w", err)
	}

	q := squeue.New()
	bus := eventbus.New()

	monitor := eventbus.NewMonitor(c, st, bus)
	mgr := controllers.NewManager(c, q, st)
	if collector != nil {
		monitor.OnFire(func(types.EventDefinition) { collector.RecordEventFired() })
		mgr.OnControllerLifecycle(func(_ string, started bool) {
			if started {
				collector.RecordControllerStart()
			} else {
				collector.RecordControllerStop()
			}
		})
		bus.OnDrop(func(_ string) { collector.RecordEventDropped() })
	}

	var model dynamics.Model
	if cfg.NonLinearModel {
		model = dynamics.NonLinearModel{}
	} else {
		model = dynamics.LinearModel{}
	}
	integrator := dynamics.New(c, q, st, model, cfg.Vehicle)

	tickLogger := chainTickLoggers(recorder, collector)
	sqMgr := squeue.NewManager(c, q, st, tickLogger)
	if collector != nil {
		sqMgr.OnTick(func(durationSeconds float64) { collector.RecordTick(durationSeconds) })
	}

	sim := &Simulation{
		cfg:          cfg,
		clock:        c,
		state:        st,
		queue:        q,
		bus:          bus,
		monitor:      monitor,
		squeueMgr:    sqMgr,
		manager:      mgr,
		integrator:   integrator,
		collector:    collector,
		log:          log,
		watchdogStop: make(chan struct{}),
		clockDone:    make(chan struct{}),
	}

	defs := sim.buildEventDefinitions(cfg)
	monitor.SetEventDefinitions(defs)
	mgr.SetActionConfigs(cfg.ActionConfigs)
	mgr.SetEventDefinitions(defs)
	mgr.SetupEventHandlers(bus)

	return sim, nil
}

// buildEventDefinitions constructs the active scenario's declarative
// event table. The abort-takeoff table needs an abortLatched closure
// (scenario.AbortTakeoff's predicate-purity workaround, see
// internal/scenario/abort.go) which is wired here to the real monitor's
// HasFired, after monitor already exists.
func (s *Simulation) buildEventDefinitions(cfg Config) []types.EventDefinition {
	switch cfg.Scenario {
	case ScenarioAbortTakeoff:
		return scenario.AbortTakeoff(cfg.Scene, func() bool { return s.monitor.HasFired("abort_at_speed") })
	default:
		return scenario.Taxi(cfg.Scene)
	}
}

type multiTickLogger struct {
	loggers []squeue.TickLogger
}

func (m multiTickLogger) LogTick(snap types.Snapshot) {
	for _, l := range m.loggers {
		l.LogTick(snap)
	}
}

// chainTickLoggers combines an optional recorder with the metrics
// collector's vehicle-stat gauges, so the state manager's reserved
// per-tick log extension point (internal/squeue/manager.go) drives both.
func chainTickLoggers(recorder squeue.TickLogger, collector *metrics.Collector) squeue.TickLogger {
	var loggers []squeue.TickLogger
	if recorder != nil {
		loggers = append(loggers, recorder)
	}
	if collector != nil {
		loggers = append(loggers, collectorTickLogger{collector})
	}
	if len(loggers) == 0 {
		return nil
	}
	return multiTickLogger{loggers}
}

type collectorTickLogger struct {
	collector *metrics.Collector
}

func (c collectorTickLogger) LogTick(snap types.Snapshot) {
	c.collector.UpdateVehicleStats(snap.Version, snap.Position, snap.Velocity)
}

// AttachSignalSource registers an external control source (OS signals,
// console commands); Start subscribes to all attached sources.
func (s *Simulation) AttachSignalSource(src control.SignalSource) {
	s.signalSources = append(s.signalSources, src)
}

// Start launches every clock-registered worker and the clock's own advance
// loop (clock.Start blocks its caller, so it runs on its own goroutine
// here, mirroring how every other worker is launched). Start returns as
// soon as every worker is launched; call Wait to block until the run
// ends (Stop called, or the watchdog stops the clock itself).
func (s *Simulation) Start() error {
	s.bus.Start()
	s.manager.RunAll()
	s.manager.Start()
	go s.monitor.Run()
	go s.squeueMgr.Run()
	go s.integrator.Run()

	s.watchdogWg.Add(1)
	go s.runWatchdog()

	for _, src := range s.signalSources {
		s.watchdogWg.Add(1)
		go s.consumeSignals(src)
	}

	go func() {
		defer close(s.clockDone)
		if err := s.clock.Start(); err != nil {
			s.clockErr = fmt.Errorf("sim: starting clock: %w", err)
		}
	}()

	s.log.Info("simulation started", "scenario", s.cfg.Scenario, "time_step", s.cfg.TimeStep)
	return nil
}

// Wait blocks until the clock's advance loop returns (the run has ended,
// whether by Stop or a watchdog trip) and returns any error clock.Start
// reported. A scenario's final-stop event stops the controllers but does
// not stop the clock.
func (s *Simulation) Wait() error {
	<-s.clockDone
	return s.clockErr
}

// Stop halts the clock (releasing every registered worker), stops the
// controller manager's dispatch loop, and waits for the watchdog and any
// signal consumers to exit.
func (s *Simulation) Stop() {
	s.stopOnce.Do(func() {
		s.clock.Stop()
		s.manager.Stop()
		s.bus.Stop()
		close(s.watchdogStop)
		s.watchdogWg.Wait()
		for _, src := range s.signalSources {
			src.Close()
		}
		s.log.Info("simulation stopped", "final_time", s.clock.CurrentTime(), "final_position", s.state.Position())
	})
}

// runWatchdog is this package's analogue of the teacher's timeoutLoop: it
// has no clock-barrier reason to run once per tick, so it polls wall
// time instead, checking the two runaway bounds spec §5 names.
func (s *Simulation) runWatchdog() {
	defer s.watchdogWg.Done()
	ticker := time.NewTicker(watchdogPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.watchdogStop:
			return
		case <-ticker.C:
			if !s.clock.IsRunning() {
				return
			}
			snap := s.state.Snapshot()
			if snap.Position > s.cfg.WatchdogMaxPosition {
				s.log.Warn("watchdog stopping simulation: position bound exceeded",
					"position", snap.Position, "max_position", s.cfg.WatchdogMaxPosition)
				s.clock.Stop()
				return
			}
			if snap.SimulationTime > s.cfg.WatchdogMaxTime {
				s.log.Warn("watchdog stopping simulation: time bound exceeded",
					"simulation_time", snap.SimulationTime, "max_time", s.cfg.WatchdogMaxTime)
				s.clock.Stop()
				return
			}
		}
	}
}

// consumeSignals translates external control commands into clock/manager
// calls until src's channel closes or the watchdog signals shutdown.
func (s *Simulation) consumeSignals(src control.SignalSource) {
	defer s.watchdogWg.Done()
	for {
		select {
		case <-s.watchdogStop:
			return
		case cmd, ok := <-src.Commands():
			if !ok {
				return
			}
			switch cmd {
			case control.CommandPause:
				s.clock.Pause()
			case control.CommandResume:
				s.clock.Resume()
			case control.CommandTerminate:
				s.log.Info("terminate command received")
				go s.Stop()
				return
			}
		}
	}
}

// State exposes the underlying shared state for read-only inspection
// (tests, a future live-telemetry endpoint).
func (s *Simulation) State() *state.State { return s.state }

// Clock exposes the underlying clock for read-only inspection.
func (s *Simulation) Clock() *clock.Clock { return s.clock }

// HasEventFired reports whether the named scenario event has already
// latched in this run.
func (s *Simulation) HasEventFired(name string) bool { return s.monitor.HasFired(name) }

// Manager exposes the controller manager, chiefly so tests can assert
// on individual controller state without re-deriving it from Snapshot.
func (s *Simulation) Manager() *controllers.Manager { return s.manager }
