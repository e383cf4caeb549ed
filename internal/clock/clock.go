// ============================================================================
// AeroSim Clock - Tick Barrier
// ============================================================================
//
// Package: internal/clock
// File: clock.go
// Function: Singleton-scoped time authority that advances simulated time
//           only after every registered worker has reported step completion
//
// Design Pattern:
//   Barrier synchronization, generalized from the worker-pool lifecycle in
//   internal/worker/worker_pool.go (mutex + WaitGroup + stopCh) into a
//   two-condition-variable rendezvous:
//
//     step_start: workers wait here for the next tick to be published
//     step_end:   the driver waits here for every worker to finish tick N
//
// Protocol (the barrier contract, binding on every registered worker):
//   1. call WaitForNextStep(lastStep)
//   2. perform at most one step of work
//   3. call NotifyStepCompleted() exactly once, regardless of outcome
//
// Violating step 3 deadlocks the tick: the driver never sees
// completed >= registered and never publishes step N+1.
//
// ============================================================================

package clock

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	// ErrAlreadyRunning is returned by Start when the clock is already running.
	ErrAlreadyRunning = errors.New("clock: already running")
	// ErrNotRunning is returned by operations that require a running clock.
	ErrNotRunning = errors.New("clock: not running")
)

const defaultTimeStep = 0.01 // seconds

// Clock is the tick-barrier time authority. One Clock exists per
// simulation run; it is constructed explicitly and threaded through every
// worker's constructor rather than reached via a package-level singleton.
type Clock struct {
	mu       sync.Mutex
	stepStart *sync.Cond
	stepEnd   *sync.Cond

	dt float64

	currentTime float64
	stepCount   int64

	registeredWorkers int64
	completedWorkers  int64

	running atomic.Bool
	paused  atomic.Bool
}

// New creates a Clock with the given time step. A non-positive dt falls
// back to the spec's default of 0.01s.
func New(dt float64) *Clock {
	if dt <= 0 {
		dt = defaultTimeStep
	}
	c := &Clock{dt: dt}
	c.stepStart = sync.NewCond(&c.mu)
	c.stepEnd = sync.NewCond(&c.mu)
	return c
}

// RegisterWorker increments the registered-worker count. Must be paired
// with UnregisterWorker around a worker's loop, including on panic-recovery
// paths (scoped release).
func (c *Clock) RegisterWorker() {
	c.mu.Lock()
	c.registeredWorkers++
	c.mu.Unlock()
}

// UnregisterWorker decrements the registered-worker count and wakes the
// driver in case the barrier was waiting only on this worker.
func (c *Clock) UnregisterWorker() {
	c.mu.Lock()
	c.registeredWorkers--
	c.mu.Unlock()
	c.stepEnd.Broadcast()
}

// Start primes the barrier (publishes step 1 once) and then runs the
// advance loop until Stop is called. It blocks the calling goroutine, so
// callers run it in its own goroutine.
func (c *Clock) Start() error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	c.mu.Lock()
	c.stepCount = 1
	c.mu.Unlock()
	c.stepStart.Broadcast()

	for c.running.Load() {
		c.mu.Lock()
		// Registered==0 means nobody has joined the barrier yet: block here
		// rather than racing ahead, per the boundary behavior that Start()
		// publishes tick 1 once and then waits for at least one worker.
		for (c.registeredWorkers == 0 || c.completedWorkers < c.registeredWorkers) && c.running.Load() {
			c.stepEnd.Wait()
		}
		if !c.running.Load() {
			c.mu.Unlock()
			return nil
		}
		c.completedWorkers = 0

		for c.paused.Load() && c.running.Load() {
			c.stepStart.Wait()
		}
		if !c.running.Load() {
			c.mu.Unlock()
			return nil
		}

		c.currentTime += c.dt
		c.stepCount++
		c.mu.Unlock()
		c.stepStart.Broadcast()
	}
	return nil
}

// Stop releases every waiter and marks the clock as no longer running.
// Cooperative: each worker's loop re-checks running on wake and exits.
func (c *Clock) Stop() {
	if !c.running.CompareAndSwap(true, false) {
		return
	}
	c.mu.Lock()
	c.mu.Unlock()
	c.stepStart.Broadcast()
	c.stepEnd.Broadcast()
}

// Pause halts tick advancement after the in-flight tick completes; workers
// continue to be released for the already-published step.
func (c *Clock) Pause() {
	c.paused.Store(true)
}

// Resume lets the advance loop proceed to the next tick.
func (c *Clock) Resume() {
	c.paused.Store(false)
	c.mu.Lock()
	c.mu.Unlock()
	c.stepStart.Broadcast()
}

// IsPaused reports whether the clock is currently paused.
func (c *Clock) IsPaused() bool {
	return c.paused.Load()
}

// IsRunning reports whether the clock's advance loop is active.
func (c *Clock) IsRunning() bool {
	return c.running.Load()
}

// WaitForNextStep blocks until step_count > lastStep or the clock has
// stopped, then returns the new step count. Workers call this once per
// tick as the first act of the barrier protocol.
func (c *Clock) WaitForNextStep(lastStep int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.stepCount <= lastStep && c.running.Load() {
		c.stepStart.Wait()
	}
	return c.stepCount
}

// NotifyStepCompleted increments the completed-worker count and wakes the
// driver. Every registered worker must call this exactly once per tick,
// regardless of whether it did useful work that tick.
func (c *Clock) NotifyStepCompleted() {
	c.mu.Lock()
	c.completedWorkers++
	c.mu.Unlock()
	c.stepEnd.Broadcast()
}

// CurrentTime returns the clock's current simulated time.
func (c *Clock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

// StepCount returns the number of ticks published so far.
func (c *Clock) StepCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepCount
}

// TimeStep returns dt.
func (c *Clock) TimeStep() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dt
}

// SetTimeStep updates dt for subsequent ticks.
func (c *Clock) SetTimeStep(dt float64) {
	if dt <= 0 {
		return
	}
	c.mu.Lock()
	c.dt = dt
	c.mu.Unlock()
}

// RegisteredWorkers returns the current registered-worker count, for
// diagnostics and tests.
func (c *Clock) RegisteredWorkers() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registeredWorkers
}
