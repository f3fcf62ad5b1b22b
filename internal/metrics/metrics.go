// Package metrics defines Prometheus gauges/counters for the serve
// transport's optional metrics endpoint (spec.md §6). New registers
// them on the default registry, which serve exposes at /metrics; no
// code in this module calls New or updates the series, so that endpoint
// serves only the client library's default collectors.
// Grounded on the pack's observability.Metrics (a much larger catalog
// covering channels/gateway/database concerns this module doesn't
// have); trimmed here to the handful of series an orchestration core
// actually produces.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the process-wide set of series; once New has registered
// them, the default registry's /metrics handler serves them.
type Metrics struct {
	TurnsTotal          *prometheus.CounterVec
	ToolExecutions      *prometheus.CounterVec
	ToolDuration        *prometheus.HistogramVec
	ActiveConnections   prometheus.Gauge
	ProviderRetries     *prometheus.CounterVec
}

// New registers and returns a fresh Metrics set against the default
// registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		TurnsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "symbcore_turns_total",
			Help: "Turns processed by the turn engine, by agent name and outcome.",
		}, []string{"agent", "outcome"}),
		ToolExecutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "symbcore_tool_executions_total",
			Help: "Tool calls executed, by tool name and success/error.",
		}, []string{"tool", "status"}),
		ToolDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "symbcore_tool_duration_seconds",
			Help:    "Tool execution latency in seconds, by tool name.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"tool"}),
		ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "symbcore_active_connections",
			Help: "Currently connected serve transport clients.",
		}),
		ProviderRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "symbcore_provider_retries_total",
			Help: "Provider call retries, by model.",
		}, []string{"model"}),
	}
}

// ObserveToolCompletion updates ToolExecutions/ToolDuration for one
// completed tool call; callers pass the raw fields rather
// than importing internal/event here to avoid a cycle risk as this
// package grows.
func (m *Metrics) ObserveToolCompletion(tool string, success bool, seconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ToolExecutions.WithLabelValues(tool, status).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(seconds)
}
