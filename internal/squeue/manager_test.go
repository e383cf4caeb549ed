package squeue

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/ChuLiYu/aerosim/internal/clock"
	"github.com/ChuLiYu/aerosim/internal/state"
	"github.com/ChuLiYu/aerosim/pkg/types"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	ticks []types.Snapshot
}

func (r *recordingLogger) LogTick(s types.Snapshot) { r.ticks = append(r.ticks, s) }

func TestManagerAppliesQueuedMessagesOncePerTick(t *testing.T) {
	c := clock.New(0.01)
	st, err := state.New(nil)
	require.NoError(t, err)
	q := New()
	logger := &recordingLogger{}
	mgr := NewManager(c, q, st, logger)

	go mgr.Run()
	go func() { _ = c.Start() }()

	q.Push(types.StateUpdateMessage{Kind: types.UpdateThrottle, Value: 0.5})
	q.Push(types.StateUpdateMessage{Kind: types.UpdateVelocity, Value: 12})

	require.Eventually(t, func() bool {
		return st.Velocity() == 12 && st.Throttle() == 0.5
	}, time.Second, time.Millisecond)

	c.Stop()
	require.Eventually(t, func() bool { return c.RegisteredWorkers() == 0 }, time.Second, time.Millisecond)
}

func TestManagerOnTickFiresOncePerCompletedTick(t *testing.T) {
	c := clock.New(0.01)
	st, err := state.New(nil)
	require.NoError(t, err)
	q := New()
	mgr := NewManager(c, q, st, nil)

	var calls int64
	mgr.OnTick(func(durationSeconds float64) {
		atomic.AddInt64(&calls, 1)
	})

	go mgr.Run()
	go func() { _ = c.Start() }()

	require.Eventually(t, func() bool { return atomic.LoadInt64(&calls) >= 3 }, time.Second, time.Millisecond)

	c.Stop()
}

func TestManagerClampsNegativeVelocityToZero(t *testing.T) {
	c := clock.New(0.01)
	st, err := state.New(nil)
	require.NoError(t, err)
	q := New()
	mgr := NewManager(c, q, st, nil)

	go mgr.Run()
	go func() { _ = c.Start() }()

	q.Push(types.StateUpdateMessage{Kind: types.UpdateVelocity, Value: -3})

	require.Eventually(t, func() bool { return st.Version() > 0 }, time.Second, time.Millisecond)
	require.Equal(t, 0.0, st.Velocity())

	c.Stop()
}
