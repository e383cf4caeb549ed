package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	collector := NewCollector()

	assert.NotNil(t, collector, "NewCollector should return a non-nil collector")
	assert.NotNil(t, collector.ticksTotal)
	assert.NotNil(t, collector.eventsFiredTotal)
	assert.NotNil(t, collector.eventsDroppedTotal)
	assert.NotNil(t, collector.controllerStartsTotal)
	assert.NotNil(t, collector.controllerStopsTotal)
	assert.NotNil(t, collector.tickDuration)
	assert.NotNil(t, collector.stateVersion)
	assert.NotNil(t, collector.position)
	assert.NotNil(t, collector.velocity)
}

func TestRecordTick(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		for i := 0; i < 5; i++ {
			collector.RecordTick(0.01)
		}
	}, "RecordTick should not panic")
}

func TestRecordEventFired(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordEventFired()
	}, "RecordEventFired should not panic")

	for i := 0; i < 3; i++ {
		collector.RecordEventFired()
	}
}

func TestRecordEventDropped(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordEventDropped()
	}, "RecordEventDropped should not panic")
}

func TestRecordControllerStartStop(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordControllerStart()
		collector.RecordControllerStop()
	}, "controller start/stop recording should not panic")
}

func TestUpdateVehicleStats(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	testCases := []struct {
		name     string
		version  uint64
		position float64
		velocity float64
	}{
		{"zero values", 0, 0, 0},
		{"normal values", 10, 123.4, 56.7},
		{"large version", 100000, 1500, 80},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				collector.UpdateVehicleStats(tc.version, tc.position, tc.velocity)
			}, "UpdateVehicleStats should not panic")
		})
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	done := make(chan bool, 100)

	for i := 0; i < 100; i++ {
		go func() {
			collector.RecordTick(0.01)
			collector.RecordEventFired()
			collector.UpdateVehicleStats(1, 10, 5)
			done <- true
		}()
	}

	for i := 0; i < 100; i++ {
		<-done
	}
}

func TestCollectorIsolation(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	collector1 := NewCollector()
	require.NotNil(t, collector1)

	// A second collector registering the same metric names against the
	// same registry panics; a process should have only one collector.
	assert.Panics(t, func() {
		NewCollector()
	}, "creating a second collector should panic due to duplicate registration")
}

func TestSimulationMetricSequence(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordTick(0.01)
		collector.UpdateVehicleStats(1, 0, 0)

		collector.RecordEventFired()
		collector.RecordControllerStart()

		collector.RecordTick(0.009)
		collector.UpdateVehicleStats(2, 0.5, 5.0)

		collector.RecordControllerStop()
	}, "a typical tick/event/controller sequence should not panic")
}
