// ============================================================================
// AeroSim Scenario - Scene Config Parser
// ============================================================================
//
// Package: internal/scenario
// File: sceneconfig.go
// Purpose: Parse a `*_config.txt` scenario file (spec §6): same lexical
//          rules as the action config, but every value is a double:
//          `KEY = double`.
//
// ============================================================================

package scenario

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// SceneConfig is the parsed set of scenario-tunable doubles, keyed by the
// recognized field names in spec §6 (target_speed, abort_speed,
// brake_rate, throttle_increase_rate, throttle_decrease_rate,
// simulation_time_step, cruise_speed, zero_velocity_threshold, ...).
// ParseSceneConfig warns about and skips any key outside the recognized
// set, so only recognized keys ever appear here; Validate (in events.go)
// is what enforces cross-referential correctness, not this parser.
type SceneConfig map[string]float64

// Get returns the value for key and whether it was present.
func (c SceneConfig) Get(key string) (float64, bool) {
	v, ok := c[key]
	return v, ok
}

// GetOrDefault returns the value for key, or def if absent.
func (c SceneConfig) GetOrDefault(key string, def float64) float64 {
	if v, ok := c[key]; ok {
		return v
	}
	return def
}

var recognizedSceneKeys = map[string]bool{
	"target_speed":            true,
	"abort_speed":              true,
	"brake_rate":               true,
	"throttle_increase_rate":   true,
	"throttle_decrease_rate":   true,
	"simulation_time_step":     true,
	"cruise_speed":             true,
	"zero_velocity_threshold":  true,
	"abort_speed_threshold":    true,
	"taxi_start_time":          true,
	"brake_trigger_position":   true,
}

// ParseSceneConfig parses a `*_config.txt` scenario file from r.
func ParseSceneConfig(r io.Reader) (SceneConfig, error) {
	cfg := make(SceneConfig)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, rawValue, ok := strings.Cut(line, "=")
		if !ok {
			slog.Default().Warn("malformed scene config line ignored: missing '='", "line", lineNo, "text", line)
			continue
		}
		key = strings.TrimSpace(key)

		value, err := strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
		if err != nil {
			slog.Default().Warn("malformed scene config line ignored: value is not a double", "line", lineNo, "key", key, "value", strings.TrimSpace(rawValue))
			continue
		}

		if !recognizedSceneKeys[key] {
			slog.Default().Warn("unrecognized scene config key ignored", "key", key, "line", lineNo)
			continue
		}

		cfg[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scenario: reading scene config: %w", err)
	}

	return cfg, nil
}
