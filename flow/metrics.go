package flow

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides Prometheus-compatible metrics for workflow execution.
//
// Metrics exposed (all namespaced with "mailflow_"):
//
// 1. transitions_total (counter): Lifecycle transitions applied.
// Labels: status (new status), trigger (send, approve, reject, modify, abort).
//
// 2. collaborator_latency_ms (histogram): Collaborator round-trip duration.
// Labels: collaborator (drafting, review, delivery), status (success, error).
//
// 3. inflight_operations (gauge): Trigger operations currently executing.
//
// 4. detached_operations_total (counter): Operations acknowledged and
// continued in the background. Labels: trigger.
//
// Usage:
//
//	registry := prometheus.NewRegistry()
//	metrics := NewMetrics(registry)
//	engine, _ := flow.New(st, artifacts, clients, emitter, flow.Options{Metrics: metrics})
//	http.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
//
// Thread-safe: all methods delegate to Prometheus collectors.
type Metrics struct {
	transitions         *prometheus.CounterVec
	collaboratorLatency *prometheus.HistogramVec
	inflight            prometheus.Gauge
	detached            *prometheus.CounterVec
}

// NewMetrics creates and registers all workflow metrics with the provided
// registry. A nil registry selects prometheus.DefaultRegisterer.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailflow",
			Name:      "transitions_total",
			Help:      "Lifecycle transitions applied, by new status and trigger",
		}, []string{"status", "trigger"}),

		collaboratorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mailflow",
			Name:      "collaborator_latency_ms",
			Help:      "Collaborator round-trip duration in milliseconds",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 30000},
		}, []string{"collaborator", "status"}),

		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "mailflow",
			Name:      "inflight_operations",
			Help:      "Trigger operations currently executing",
		}),

		detached: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailflow",
			Name:      "detached_operations_total",
			Help:      "Operations acknowledged and continued in the background",
		}, []string{"trigger"}),
	}
}

// RecordTransition counts one lifecycle transition.
func (m *Metrics) RecordTransition(status Status, trigger string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(status), trigger).Inc()
}

// RecordCollaboratorLatency records one collaborator round trip.
func (m *Metrics) RecordCollaboratorLatency(collaborator string, latency time.Duration, status string) {
	if m == nil {
		return
	}
	m.collaboratorLatency.WithLabelValues(collaborator, status).Observe(float64(latency.Milliseconds()))
}

// OperationStarted increments the inflight gauge and returns a done func
// that decrements it.
func (m *Metrics) OperationStarted() func() {
	if m == nil {
		return func() {}
	}
	m.inflight.Inc()
	return func() { m.inflight.Dec() }
}

// RecordDetached counts one background continuation.
func (m *Metrics) RecordDetached(trigger string) {
	if m == nil {
		return
	}
	m.detached.WithLabelValues(trigger).Inc()
}
