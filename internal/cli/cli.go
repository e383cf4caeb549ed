// ============================================================================
// AeroSim CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: User-facing command line interface, built on Cobra.
//
// Command Structure:
//   aerosim                      # Root command
//   ├── run                      # Run a scenario to completion
//   │   └── --config, -c        # Simulator config file
//   └── validate                 # Validate a scenario's config without running it
//       └── --config, -c
//
// Configuration Management:
//   YAML config file (default: configs/default.yaml). Scene and
//   controller-action wiring live in their own bespoke text-config files
//   (named by the YAML config), not in the YAML itself - matching
//   spec.md §4.8's format split.
//
// run Command:
//   1. Load YAML config, scene config, action config
//   2. Validate the action table against the scene's event definitions
//   3. Open output sinks (CSV, brief/detail logs)
//   4. Start the metrics HTTP server, if enabled
//   5. Construct and start internal/sim.Simulation
//   6. Listen for SIGINT/SIGTERM (and, if enabled, console commands)
//   7. Stop gracefully on signal or scenario completion
//
// ============================================================================

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ChuLiYu/aerosim/internal/control"
	"github.com/ChuLiYu/aerosim/internal/metrics"
	"github.com/ChuLiYu/aerosim/internal/recorder"
	"github.com/ChuLiYu/aerosim/internal/scenario"
	"github.com/ChuLiYu/aerosim/internal/sim"
	"github.com/ChuLiYu/aerosim/internal/squeue"
	"github.com/ChuLiYu/aerosim/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML simulator config (e.g. configs/default.yaml).
type Config struct {
	Scenario string             `yaml:"scenario"`
	TimeStep float64            `yaml:"time_step"`
	Vehicle  types.VehicleConfig `yaml:"vehicle"`

	SceneConfigPath  string `yaml:"scene_config_path"`
	ActionConfigPath string `yaml:"action_config_path"`

	Watchdog struct {
		MaxPosition float64 `yaml:"max_position"`
		MaxTime     float64 `yaml:"max_time"`
	} `yaml:"watchdog"`

	Dynamics struct {
		NonLinearModel bool `yaml:"non_linear_model"`
	} `yaml:"dynamics"`

	Output struct {
		CSVPath      string `yaml:"csv_path"`
		BriefLogPath string `yaml:"brief_log_path"`
		DetailLogPath string `yaml:"detail_log_path"`
	} `yaml:"output"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
		Port    int  `yaml:"port"`
	} `yaml:"metrics"`

	Control struct {
		Console bool `yaml:"console"`
	} `yaml:"control"`
}

var configFile string

// BuildCLI constructs the root aerosim command and its subcommands.
func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aerosim",
		Short: "AeroSim: a deterministic, clock-barrier vehicle dynamics simulator",
		Long: `AeroSim runs declarative scenarios (Taxi, Abort-Takeoff) against a
fixed-step vehicle dynamics model, behind a shared clock barrier shared
by every controller, the dynamics integrator and the event monitor.`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/default.yaml", "simulator config file path")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildValidateCommand())

	return rootCmd
}

func buildRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario()
		},
	}
	return cmd
}

func buildValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a scenario's action config against its event table, without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateScenario()
		},
	}
	return cmd
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return &cfg, nil
}

func loadSceneAndActions(cfg *Config) (scenario.SceneConfig, map[types.ControllerAction]types.ActionConfig, error) {
	sceneFile, err := os.Open(cfg.SceneConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open scene config: %w", err)
	}
	defer sceneFile.Close()

	scene, err := scenario.ParseSceneConfig(sceneFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse scene config: %w", err)
	}

	actionFile, err := os.Open(cfg.ActionConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open action config: %w", err)
	}
	defer actionFile.Close()

	actions, err := scenario.ParseActionConfig(actionFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse action config: %w", err)
	}

	return scene, actions, nil
}

func eventDefinitionsFor(kind sim.ScenarioKind, scene scenario.SceneConfig, abortLatched func() bool) []types.EventDefinition {
	if kind == sim.ScenarioAbortTakeoff {
		return scenario.AbortTakeoff(scene, abortLatched)
	}
	return scenario.Taxi(scene)
}

func validateScenario() error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	scene, actions, err := loadSceneAndActions(cfg)
	if err != nil {
		return err
	}

	defs := eventDefinitionsFor(sim.ScenarioKind(cfg.Scenario), scene, func() bool { return false })
	if err := scenario.Validate(defs, actions); err != nil {
		return fmt.Errorf("scenario validation failed: %w", err)
	}

	fmt.Printf("scenario %q: %d event definitions, %d action config entries, all references resolved\n",
		cfg.Scenario, len(defs), len(actions))
	return nil
}

func runScenario() error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	scene, actions, err := loadSceneAndActions(cfg)
	if err != nil {
		return err
	}

	// Validate before opening any output sinks: a load-time config defect
	// should never leave a half-written CSV/log pair behind.
	probeDefs := eventDefinitionsFor(sim.ScenarioKind(cfg.Scenario), scene, func() bool { return false })
	if err := scenario.Validate(probeDefs, actions); err != nil {
		return fmt.Errorf("scenario validation failed: %w", err)
	}

	var logSink *recorder.LogSink
	if cfg.Output.BriefLogPath != "" && cfg.Output.DetailLogPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output.BriefLogPath), 0o755); err != nil {
			return fmt.Errorf("failed to create brief log directory: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Output.DetailLogPath), 0o755); err != nil {
			return fmt.Errorf("failed to create detail log directory: %w", err)
		}
		briefFile, err := os.Create(cfg.Output.BriefLogPath)
		if err != nil {
			return fmt.Errorf("failed to create brief log: %w", err)
		}
		detailFile, err := os.Create(cfg.Output.DetailLogPath)
		if err != nil {
			briefFile.Close()
			return fmt.Errorf("failed to create detail log: %w", err)
		}
		logSink = recorder.NewLogSink(briefFile, detailFile)
		defer logSink.Close()

		// Install the fan-out handler before any other component
		// captures slog.Default() at construction time, so every
		// package's own logger (clock, controllers, eventbus,
		// dynamics, squeue, ...) lands in log_brief.txt/log_detail.txt
		// too, not just the two literal logSink.Brief calls below.
		slog.SetDefault(slog.New(logSink.Handler()))
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Port); err != nil {
				slog.Error("metrics server stopped", "error", err)
			}
		}()
	}

	var rec *recorder.CSVRecorder
	if cfg.Output.CSVPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output.CSVPath), 0o755); err != nil {
			return fmt.Errorf("failed to create csv output directory: %w", err)
		}
		f, err := os.Create(cfg.Output.CSVPath)
		if err != nil {
			return fmt.Errorf("failed to create csv output: %w", err)
		}
		rec = recorder.NewCSVRecorder(f, f)
		defer rec.Close()
	}

	simCfg := sim.Config{
		Vehicle:             cfg.Vehicle,
		Scene:               scene,
		ActionConfigs:        actions,
		Scenario:            sim.ScenarioKind(cfg.Scenario),
		TimeStep:            cfg.TimeStep,
		WatchdogMaxPosition: cfg.Watchdog.MaxPosition,
		WatchdogMaxTime:     cfg.Watchdog.MaxTime,
		NonLinearModel:      cfg.Dynamics.NonLinearModel,
	}

	var tickLogger squeue.TickLogger
	if rec != nil {
		tickLogger = rec
	}

	s, err := sim.New(simCfg, tickLogger, collector)
	if err != nil {
		return fmt.Errorf("failed to construct simulation: %w", err)
	}

	osSignals := control.NewOSSignalSource()
	s.AttachSignalSource(osSignals)
	if cfg.Control.Console {
		s.AttachSignalSource(control.NewConsoleSource(os.Stdin))
	}

	if logSink != nil {
		logSink.Brief("starting scenario %s", cfg.Scenario)
	}
	slog.Info("starting scenario", "scenario", cfg.Scenario, "time_step", cfg.TimeStep)

	if err := s.Start(); err != nil {
		return fmt.Errorf("failed to start simulation: %w", err)
	}

	// control.OSSignalSource (attached above) turns SIGINT/SIGTERM into a
	// CommandTerminate that Simulation.Stop()s itself; Wait simply blocks
	// until that happens or the scenario's own watchdog/event-driven end
	// stops the clock.
	err = s.Wait()
	if logSink != nil {
		logSink.Brief("scenario %s finished", cfg.Scenario)
	}
	return err
}
