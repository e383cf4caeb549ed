// ============================================================================
// AeroSim Metrics - Prometheus Monitoring
// ============================================================================
//
// Package: internal/metrics
// File: metrics.go
// Purpose: Collect and expose simulation metrics for Prometheus
//          monitoring.
//
// Monitoring Philosophy:
//   Based on RED (Rate, Errors, Duration) and USE (Utilization,
//   Saturation, Errors), adapted from job-queue throughput/latency to
//   simulation tick throughput and scenario-event throughput.
//
// Metric Categories:
//
//   1. Counters - cumulative, monotonically increasing:
//      - simulation_ticks_total: Total clock ticks published
//      - simulation_events_fired_total: Total scenario events fired
//      - simulation_events_dropped_total: Total bus events dropped (overflow)
//      - simulation_controller_starts_total: Total controller Start() calls
//      - simulation_controller_stops_total: Total controller Stop() calls
//
//   2. Performance Metrics (Histogram):
//      - simulation_tick_duration_seconds: Wall-clock duration of one tick
//        * Buckets: 0.0005 .. 0.05, tuned for a 0.01s default dt
//
//   3. Status Metrics (Gauge):
//      - simulation_state_version: Current SharedState.Version()
//      - simulation_position_meters: Current vehicle position
//      - simulation_velocity_mps: Current vehicle velocity
//
// HTTP Endpoint:
//   Exposed via /metrics, scraped by Prometheus. Default port: 9090.
//
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector collects Prometheus metrics for one simulation run.
type Collector struct {
	ticksTotal            prometheus.Counter
	eventsFiredTotal      prometheus.Counter
	eventsDroppedTotal    prometheus.Counter
	controllerStartsTotal prometheus.Counter
	controllerStopsTotal  prometheus.Counter

	tickDuration prometheus.Histogram

	stateVersion prometheus.Gauge
	position     prometheus.Gauge
	velocity     prometheus.Gauge

	mu sync.Mutex
}

// NewCollector creates and registers a new metrics collector.
func NewCollector() *Collector {
	c := &Collector{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulation_ticks_total",
			Help: "Total number of clock ticks published",
		}),
		eventsFiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulation_events_fired_total",
			Help: "Total number of scenario events fired",
		}),
		eventsDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulation_events_dropped_total",
			Help: "Total number of event-bus publishes dropped due to overflow",
		}),
		controllerStartsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulation_controller_starts_total",
			Help: "Total number of controller Start() calls",
		}),
		controllerStopsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "simulation_controller_stops_total",
			Help: "Total number of controller Stop() calls",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simulation_tick_duration_seconds",
			Help:    "Wall-clock duration of one simulation tick",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		}),
		stateVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simulation_state_version",
			Help: "Current SharedState version (monotonic commit counter)",
		}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simulation_position_meters",
			Help: "Current vehicle position in meters",
		}),
		velocity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "simulation_velocity_mps",
			Help: "Current vehicle velocity in meters per second",
		}),
	}

	prometheus.MustRegister(c.ticksTotal)
	prometheus.MustRegister(c.eventsFiredTotal)
	prometheus.MustRegister(c.eventsDroppedTotal)
	prometheus.MustRegister(c.controllerStartsTotal)
	prometheus.MustRegister(c.controllerStopsTotal)
	prometheus.MustRegister(c.tickDuration)
	prometheus.MustRegister(c.stateVersion)
	prometheus.MustRegister(c.position)
	prometheus.MustRegister(c.velocity)

	return c
}

// RecordTick records one published clock tick and its wall-clock duration.
func (c *Collector) RecordTick(durationSeconds float64) {
	c.ticksTotal.Inc()
	c.tickDuration.Observe(durationSeconds)
}

// RecordEventFired records one scenario event firing.
func (c *Collector) RecordEventFired() {
	c.eventsFiredTotal.Inc()
}

// RecordEventDropped records one event-bus publish dropped due to
// overflow (the FIFO's drop-newest policy).
func (c *Collector) RecordEventDropped() {
	c.eventsDroppedTotal.Inc()
}

// RecordControllerStart records one controller Start() call.
func (c *Collector) RecordControllerStart() {
	c.controllerStartsTotal.Inc()
}

// RecordControllerStop records one controller Stop() call.
func (c *Collector) RecordControllerStop() {
	c.controllerStopsTotal.Inc()
}

// UpdateVehicleStats updates the instantaneous gauges from the latest
// snapshot's values.
func (c *Collector) UpdateVehicleStats(version uint64, position, velocity float64) {
	c.stateVersion.Set(float64(version))
	c.position.Set(position)
	c.velocity.Set(velocity)
}

// StartServer starts the Prometheus metrics HTTP server on port.
func StartServer(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
