package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "assembly"

type moduleMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// ProgramMetrics tracks executed program calls and the value they move.
type ProgramMetrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	flows   *prometheus.CounterVec
	pending prometheus.Gauge
}

var (
	moduleMetricsOnce sync.Once
	moduleRegistry    *moduleMetrics

	programMetricsOnce sync.Once
	programRegistry    *ProgramMetrics
)

// ModuleMetrics returns the lazily-initialised registry used to record query
// API activity.
func ModuleMetrics() *moduleMetrics {
	moduleMetricsOnce.Do(func() {
		moduleRegistry = &moduleMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total query API requests segmented by route and outcome.",
			}, []string{"module", "route", "outcome"}),
			errors: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "errors_total",
				Help:      "Total query API errors segmented by route and status code.",
			}, []string{"module", "route", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution for query API handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"module", "route"}),
		}
		prometheus.MustRegister(
			moduleRegistry.requests,
			moduleRegistry.errors,
			moduleRegistry.latency,
		)
	})
	return moduleRegistry
}

// Observe records the outcome of a query request. The status code should be
// the HTTP status that was ultimately written to the response writer.
func (m *moduleMetrics) Observe(module, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if module == "" {
		module = "unknown"
	}
	if route == "" {
		route = "unknown"
	}
	outcome := "success"
	if status >= 400 {
		outcome = "error"
	}
	m.requests.WithLabelValues(module, route, outcome).Inc()
	if status >= 400 {
		m.errors.WithLabelValues(module, route, fmt.Sprintf("%d", status)).Inc()
	}
	m.latency.WithLabelValues(module, route).Observe(duration.Seconds())
}

// Programs returns the singleton registry for executed program calls.
func Programs() *ProgramMetrics {
	programMetricsOnce.Do(func() {
		programRegistry = &ProgramMetrics{
			calls: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "program",
				Name:      "calls_total",
				Help:      "Executed program calls segmented by instruction, outcome and rejection reason.",
			}, []string{"instruction", "outcome", "reason"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "program",
				Name:      "call_duration_seconds",
				Help:      "Latency distribution for executed program calls including commit.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"instruction"}),
			flows: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "program",
				Name:      "flow_units_total",
				Help:      "Token base units moved by accepted calls segmented by flow.",
			}, []string{"flow"}),
			pending: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "program",
				Name:      "calls_in_flight",
				Help:      "Program calls currently executing or waiting for the state lock.",
			}),
		}
		prometheus.MustRegister(
			programRegistry.calls,
			programRegistry.latency,
			programRegistry.flows,
			programRegistry.pending,
		)
	})
	return programRegistry
}

// Begin marks a call as in flight and returns the function that clears it.
func (m *ProgramMetrics) Begin() func() {
	if m == nil {
		return func() {}
	}
	m.pending.Inc()
	return m.pending.Dec
}

// Observe records a finished call. reason is empty for accepted calls.
func (m *ProgramMetrics) Observe(instruction, reason string, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "accepted"
	if reason != "" {
		outcome = "rejected"
	} else {
		reason = "none"
	}
	m.calls.WithLabelValues(instruction, outcome, reason).Inc()
	m.latency.WithLabelValues(instruction).Observe(duration.Seconds())
}

// RecordFlow adds amount base units to the named flow.
func (m *ProgramMetrics) RecordFlow(flow string, amount uint64) {
	if m == nil || amount == 0 {
		return
	}
	m.flows.WithLabelValues(flow).Add(float64(amount))
}
