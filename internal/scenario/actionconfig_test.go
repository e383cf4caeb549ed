package scenario

import (
	"strings"
	"testing"

	"github.com/ChuLiYu/aerosim/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionConfigBasic(t *testing.T) {
	input := `
# comment line
START_THROTTLE_INCREASE = throttle_inc, throttle_control_enabled=true
STOP_THROTTLE_INCREASE = throttle_inc, throttle_control_enabled=false
STOP_ALL_CONTROLLERS = STOP_ALL
SWITCH_TO_AUTO_MODE = MODE, flight_mode=AUTO
`
	cfgs, err := ParseActionConfig(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cfgs, 4)

	inc := cfgs[types.ActionStartThrottleIncrease]
	assert.Equal(t, "throttle_inc", inc.ControllerName)
	assert.Equal(t, types.ActionKindController, inc.Kind)
	assert.Equal(t, "true", inc.StateSettings["throttle_control_enabled"])

	stopAll := cfgs[types.ActionStopAllControllers]
	assert.Equal(t, types.ActionKindStopAll, stopAll.Kind)

	mode := cfgs[types.ActionSwitchToAutoMode]
	assert.Equal(t, types.ActionKindMode, mode.Kind)
	assert.Equal(t, "AUTO", mode.StateSettings["flight_mode"])
}

func TestParseActionConfigSkipsMalformedLine(t *testing.T) {
	input := `
THIS_IS_NOT_VALID
STOP_ALL_CONTROLLERS = STOP_ALL
`
	cfgs, err := ParseActionConfig(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, cfgs, 1, "the malformed line is warned and skipped, not fatal")
	assert.Equal(t, types.ActionKindStopAll, cfgs[types.ActionStopAllControllers].Kind)
}

func TestParseSceneConfigBasic(t *testing.T) {
	input := `
target_speed = 60.0
abort_speed = 70
unknown_key = 1.0
`
	cfg, err := ParseSceneConfig(strings.NewReader(input))
	require.NoError(t, err)

	v, ok := cfg.Get("target_speed")
	require.True(t, ok)
	assert.Equal(t, 60.0, v)

	_, ok = cfg.Get("unknown_key")
	assert.False(t, ok, "unrecognized keys are warned and ignored, not stored")
}

func TestParseSceneConfigSkipsNonNumericValue(t *testing.T) {
	input := `
target_speed = not-a-number
abort_speed = 70
`
	cfg, err := ParseSceneConfig(strings.NewReader(input))
	require.NoError(t, err)

	_, ok := cfg.Get("target_speed")
	assert.False(t, ok, "the malformed value is warned and skipped, not fatal")

	v, ok := cfg.Get("abort_speed")
	require.True(t, ok)
	assert.Equal(t, 70.0, v)
}
