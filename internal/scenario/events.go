// ============================================================================
// AeroSim Scenario - Event Table Validation
// ============================================================================
//
// Package: internal/scenario
// File: events.go
// Purpose: Cross-reference validation for a parsed EventDefinition table
//          against a loaded action-config table (SPEC_FULL §4.8,
//          supplemented feature).
//
// Rather than discovering a missing ActionConfig entry only when an
// event first fires (spec §4.5's "no action config for action" warning
// path, still present in controllers.Manager as the runtime fallback),
// Validate catches the same defect at load time, before the scenario
// starts running.
//
// ============================================================================

package scenario

import (
	"fmt"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// Validate checks that every action referenced by defs has a
// corresponding entry in actionConfigs, returning one error that lists
// every missing reference (not just the first), so a scenario author
// sees the whole problem in one pass.
func Validate(defs []types.EventDefinition, actionConfigs map[types.ControllerAction]types.ActionConfig) error {
	var missing []string
	seenNames := make(map[string]bool)

	for _, def := range defs {
		if def.Name == "" {
			return fmt.Errorf("scenario: event definition with empty name")
		}
		if seenNames[def.Name] {
			return fmt.Errorf("scenario: duplicate event definition name %q", def.Name)
		}
		seenNames[def.Name] = true

		if def.Predicate == nil {
			return fmt.Errorf("scenario: event definition %q has no predicate", def.Name)
		}

		for _, action := range def.Actions {
			if _, ok := actionConfigs[action]; !ok {
				missing = append(missing, fmt.Sprintf("%s (referenced by event %q)", action, def.Name))
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("scenario: %d action(s) referenced with no action config entry: %v", len(missing), missing)
	}
	return nil
}
