// cmd/demo/main.go runs the AC1 Taxi scenario directly, without going
// through the Cobra command tree in internal/cli. It exists for quick
// manual checks of the simulator's wiring: hard-code a scenario, start
// it, print periodic status, and stop cleanly on Ctrl+C or scenario
// completion.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ChuLiYu/aerosim/internal/control"
	"github.com/ChuLiYu/aerosim/internal/scenario"
	"github.com/ChuLiYu/aerosim/internal/sim"
	"github.com/ChuLiYu/aerosim/pkg/types"
)

func main() {
	mode := "taxi"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	scene := scenario.SceneConfig{
		"taxi_start_time":        0.5,
		"brake_trigger_position": 500,
		"zero_velocity_threshold": 0.1,
		"target_speed":           0,
	}

	actions := taxiActionTable()
	scenKind := sim.ScenarioTaxi

	if mode == "abort" {
		scene = scenario.SceneConfig{
			"taxi_start_time":         0.5,
			"brake_trigger_position":  1200,
			"zero_velocity_threshold": 0.1,
			"abort_speed":             40,
			"abort_speed_threshold":   0.5,
		}
		scenKind = sim.ScenarioAbortTakeoff
	}

	cfg := sim.Config{
		Vehicle:       types.DefaultVehicleConfig(),
		Scene:         scene,
		ActionConfigs: actions,
		Scenario:      scenKind,
		TimeStep:      0.01,
	}

	s, err := sim.New(cfg, nil, nil)
	if err != nil {
		log.Fatalf("failed to construct simulation: %v", err)
	}

	signals := control.NewOSSignalSource()
	s.AttachSignalSource(signals)

	fmt.Printf("starting %s scenario (AC1 reference vehicle)\n", scenKind)

	if err := s.Start(); err != nil {
		log.Fatalf("failed to start simulation: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Wait() }()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			snap := s.State().Snapshot()
			fmt.Printf("scenario finished: t=%.2fs position=%.1fm velocity=%.1fm/s mode=%s\n",
				snap.SimulationTime, snap.Position, snap.Velocity, s.State().FlightMode())
			if err != nil {
				log.Fatalf("simulation ended with error: %v", err)
			}
			return
		case <-ticker.C:
			snap := s.State().Snapshot()
			fmt.Printf("t=%6.2fs  position=%8.1fm  velocity=%6.1fm/s  mode=%s\n",
				snap.SimulationTime, snap.Position, snap.Velocity, s.State().FlightMode())
		}
	}
}

// taxiActionTable is the controller-action wiring of
// configs/controller_actions_config.txt without its two pitch_hold
// entries, inlined here so this entry point has no file dependency
// beyond the scene it hard-codes above.
func taxiActionTable() map[types.ControllerAction]types.ActionConfig {
	return map[types.ControllerAction]types.ActionConfig{
		types.ActionStartThrottleIncrease: {Name: types.ActionStartThrottleIncrease, ControllerName: "throttle_inc", Kind: types.ActionKindController, StateSettings: map[string]string{"throttle_control_enabled": "true"}},
		types.ActionStopThrottleIncrease:  {Name: types.ActionStopThrottleIncrease, ControllerName: "throttle_inc", Kind: types.ActionKindController, StateSettings: map[string]string{"throttle_control_enabled": "false"}},
		types.ActionStartThrottleDecrease: {Name: types.ActionStartThrottleDecrease, ControllerName: "throttle_dec", Kind: types.ActionKindController, StateSettings: map[string]string{"throttle_control_enabled": "true"}},
		types.ActionStopThrottleDecrease:  {Name: types.ActionStopThrottleDecrease, ControllerName: "throttle_dec", Kind: types.ActionKindController, StateSettings: map[string]string{"throttle_control_enabled": "false"}},
		types.ActionStartBrake:            {Name: types.ActionStartBrake, ControllerName: "brake", Kind: types.ActionKindController, StateSettings: map[string]string{"brake_control_enabled": "true"}},
		types.ActionStopBrake:             {Name: types.ActionStopBrake, ControllerName: "brake", Kind: types.ActionKindController, StateSettings: map[string]string{"brake_control_enabled": "false"}},
		types.ActionStartCruise:           {Name: types.ActionStartCruise, ControllerName: "cruise_runway", Kind: types.ActionKindController, StateSettings: map[string]string{"cruise_control_enabled": "true"}},
		types.ActionStopCruise:            {Name: types.ActionStopCruise, ControllerName: "cruise_runway", Kind: types.ActionKindController, StateSettings: map[string]string{"cruise_control_enabled": "false"}},
		types.ActionStopAllControllers:    {Name: types.ActionStopAllControllers, Kind: types.ActionKindStopAll},
		types.ActionSwitchToAutoMode:      {Name: types.ActionSwitchToAutoMode, Kind: types.ActionKindMode, StateSettings: map[string]string{"flight_mode": "AUTO"}},
		types.ActionSwitchToManualMode:    {Name: types.ActionSwitchToManualMode, Kind: types.ActionKindMode, StateSettings: map[string]string{"flight_mode": "MANUAL"}},
		types.ActionSwitchToSemiAutoMode:  {Name: types.ActionSwitchToSemiAutoMode, Kind: types.ActionKindMode, StateSettings: map[string]string{"flight_mode": "SEMI_AUTO"}},
	}
}
