package squeue

import (
	"sync"
	"testing"

	"github.com/ChuLiYu/aerosim/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestPushTryPopFIFO(t *testing.T) {
	q := New()
	q.Push(types.StateUpdateMessage{Kind: types.UpdateThrottle, Value: 0.1})
	q.Push(types.StateUpdateMessage{Kind: types.UpdateBrake, Value: 0.2})

	msg, ok := q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, types.UpdateThrottle, msg.Kind)

	msg, ok = q.TryPop()
	assert.True(t, ok)
	assert.Equal(t, types.UpdateBrake, msg.Kind)

	_, ok = q.TryPop()
	assert.False(t, ok)
}

func TestTryPopAllDrains(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		q.Push(types.StateUpdateMessage{Kind: types.UpdateVelocity, Value: float64(i)})
	}
	drained := q.TryPopAll()
	assert.Len(t, drained, 5)
	assert.Equal(t, 0, q.Len())
	assert.Nil(t, q.TryPopAll())
}

func TestConcurrentProducersNeverBlock(t *testing.T) {
	q := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			q.Push(types.StateUpdateMessage{Kind: types.UpdatePosition, Value: float64(v)})
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 100, q.Len())
}
