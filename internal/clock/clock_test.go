package clock

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWorker(t *testing.T, c *Clock, ticks int, done *atomic.Int64) {
	t.Helper()
	c.RegisterWorker()
	defer c.UnregisterWorker()

	last := int64(0)
	for i := 0; i < ticks; i++ {
		step := c.WaitForNextStep(last)
		if !c.IsRunning() {
			return
		}
		last = step
		done.Add(1)
		c.NotifyStepCompleted()
	}
}

func TestClockAdvancesOncePerBarrier(t *testing.T) {
	c := New(0.01)
	var done atomic.Int64

	go runWorker(t, c, 5, &done)

	go func() {
		_ = c.Start()
	}()

	require.Eventually(t, func() bool {
		return c.StepCount() >= 6
	}, time.Second, time.Millisecond)

	c.Stop()
	assert.GreaterOrEqual(t, done.Load(), int64(5))
}

func TestWaitForNextStepBlocksWithZeroRegistered(t *testing.T) {
	c := New(0.01)
	go func() { _ = c.Start() }()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), c.StepCount(), "clock must publish tick 1 once, then block with no workers registered")

	c.Stop()
}

func TestPauseHoldsCurrentTime(t *testing.T) {
	c := New(0.01)
	var done atomic.Int64
	go runWorker(t, c, 100, &done)
	go func() { _ = c.Start() }()

	require.Eventually(t, func() bool { return c.StepCount() >= 3 }, time.Second, time.Millisecond)
	c.Pause()
	timeAtPause := c.CurrentTime()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, timeAtPause, c.CurrentTime(), "paused clock must not advance time")

	c.Resume()
	require.Eventually(t, func() bool { return c.CurrentTime() > timeAtPause }, time.Second, time.Millisecond)

	c.Stop()
}

func TestStopReleasesWaiters(t *testing.T) {
	c := New(0.01)
	released := make(chan struct{})
	c.RegisterWorker()
	go func() {
		defer c.UnregisterWorker()
		c.WaitForNextStep(1 << 30) // never satisfied except by Stop
		close(released)
	}()

	go func() { _ = c.Start() }()
	time.Sleep(10 * time.Millisecond)
	c.Stop()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("worker was not released by Stop")
	}
}

func TestSetTimeStep(t *testing.T) {
	c := New(0.01)
	assert.Equal(t, 0.01, c.TimeStep())
	c.SetTimeStep(0.02)
	assert.Equal(t, 0.02, c.TimeStep())
	c.SetTimeStep(-1) // ignored
	assert.Equal(t, 0.02, c.TimeStep())
}
