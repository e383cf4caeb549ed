// ============================================================================
// AeroSim Scenario - Action Config Parser
// ============================================================================
//
// Package: internal/scenario
// File: actionconfig.go
// Purpose: Parse controller_actions_config.txt (spec §6): UTF-8,
//          line-oriented, `ACTION_NAME = controller_name,
//          key=value[;key=value]*`.
//
// Design:
//   Hand-rolled bufio.Scanner + strings parser - justified stdlib choice
//   (see DESIGN.md): no example in the retrieved pack parses this exact
//   "KEY = value[;key=value]*" grammar; the YAML/TOML libraries present
//   in the pack (gopkg.in/yaml.v3, used elsewhere for VehicleConfig) do
//   not fit a fixed, non-YAML line grammar the spec pins verbatim.
//
// ============================================================================

package scenario

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// ParseActionConfig parses controller_actions_config.txt content from r
// into the action-name -> ActionConfig table consumed by
// controllers.Manager.SetActionConfigs.
func ParseActionConfig(r io.Reader) (map[types.ControllerAction]types.ActionConfig, error) {
	result := make(map[types.ControllerAction]types.ActionConfig)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, rest, ok := strings.Cut(line, "=")
		if !ok {
			slog.Default().Warn("malformed action config line ignored: missing '='", "line", lineNo, "text", line)
			continue
		}
		actionName := types.ControllerAction(strings.TrimSpace(name))

		fields := strings.SplitN(strings.TrimSpace(rest), ",", 2)
		controllerName := strings.TrimSpace(fields[0])

		settings := make(map[string]string)
		malformed := false
		if len(fields) == 2 {
			for _, pair := range strings.Split(fields[1], ";") {
				pair = strings.TrimSpace(pair)
				if pair == "" {
					continue
				}
				key, value, ok := strings.Cut(pair, "=")
				if !ok {
					slog.Default().Warn("malformed action config line ignored: malformed setting", "line", lineNo, "action", actionName, "setting", pair)
					malformed = true
					break
				}
				settings[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
		if malformed {
			continue
		}

		kind := types.ActionKindController
		switch controllerName {
		case "STOP_ALL":
			kind = types.ActionKindStopAll
		case "MODE":
			kind = types.ActionKindMode
		}

		result[actionName] = types.ActionConfig{
			Name:           actionName,
			ControllerName: controllerName,
			StateSettings:  settings,
			Kind:           kind,
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scenario: reading action config: %w", err)
	}

	return result, nil
}
