package recorder

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ChuLiYu/aerosim/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRecorderWritesHeaderOnConstruction(t *testing.T) {
	var buf bytes.Buffer
	r := NewCSVRecorder(&buf, nil)
	_ = r

	assert.Equal(t, "time,position,velocity,acc,throttle,brake,thrust,drag,brake_force\n", buf.String())
}

func TestCSVRecorderWritesRowsInOrder(t *testing.T) {
	var buf bytes.Buffer
	r := NewCSVRecorder(&buf, nil)

	r.LogTick(types.Snapshot{SimulationTime: 0.0, Position: 0, Velocity: 0})
	r.LogTick(types.Snapshot{SimulationTime: 0.01, Position: 1, Velocity: 2})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3) // header + 2 rows
	assert.Contains(t, lines[1], "0.00,")
	assert.Contains(t, lines[2], "0.01,")
}

func TestCSVRecorderDropsBackwardsTimestamp(t *testing.T) {
	var buf bytes.Buffer
	r := NewCSVRecorder(&buf, nil)

	r.LogTick(types.Snapshot{SimulationTime: 1.0})
	r.LogTick(types.Snapshot{SimulationTime: 0.5}) // backwards, must be dropped

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2) // header + 1 row (the backwards one dropped)
}

func TestCSVRecorderDropsDuplicateTimestamp(t *testing.T) {
	var buf bytes.Buffer
	r := NewCSVRecorder(&buf, nil)

	r.LogTick(types.Snapshot{SimulationTime: 1.0})
	r.LogTick(types.Snapshot{SimulationTime: 1.0}) // duplicate, must be dropped

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
}
