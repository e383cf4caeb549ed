// ============================================================================
// AeroSim State-Update Queue - Multi-Producer/Single-Consumer
// ============================================================================
//
// Package: internal/squeue
// File: queue.go
// Purpose: Non-blocking-for-producers queue of StateUpdateMessage, drained
//          once per tick by the state manager.
//
// Design Pattern:
//   Generalized from internal/storage/wal/batch_writer.go's buffered,
//   non-blocking batch writer: there, entries accumulate until a size or
//   time threshold triggers a flush to disk; here, messages accumulate
//   until the state manager's once-per-tick TryPopAll drains them into
//   SharedState. No disk I/O: this is purely an in-memory hand-off.
//
// Concurrency:
//   mutex-guarded slice. Push never blocks (bounded only by available
//   memory, matching spec's "non-blocking for producers"); TryPop/TryPopAll
//   never block either.
//
// ============================================================================

package squeue

import (
	"sync"

	"github.com/ChuLiYu/aerosim/pkg/types"
)

// Queue is the multi-producer/single-consumer state-update queue.
type Queue struct {
	mu       sync.Mutex
	messages []types.StateUpdateMessage
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Push enqueues a message. Never blocks.
func (q *Queue) Push(msg types.StateUpdateMessage) {
	q.mu.Lock()
	q.messages = append(q.messages, msg)
	q.mu.Unlock()
}

// TryPop removes and returns the oldest message, if any.
func (q *Queue) TryPop() (types.StateUpdateMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return types.StateUpdateMessage{}, false
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, true
}

// TryPopAll drains every currently-queued message in FIFO order. This is
// the call the state manager makes once per tick.
func (q *Queue) TryPopAll() []types.StateUpdateMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return nil
	}
	drained := q.messages
	q.messages = nil
	return drained
}

// Len reports the number of currently-queued messages, for metrics/tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}
