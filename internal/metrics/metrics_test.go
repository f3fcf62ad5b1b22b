package metrics

import (
	"sync"
	"testing"
)

// New registers against the default Prometheus registry, so the whole
// test package shares a single instance (a second New() call would
// panic on duplicate registration).
var (
	testMetrics     *Metrics
	testMetricsOnce sync.Once
)

func sharedTestMetrics() *Metrics {
	testMetricsOnce.Do(func() { testMetrics = New() })
	return testMetrics
}

func TestNewRegistersSeries(t *testing.T) {
	m := sharedTestMetrics()
	if m.TurnsTotal == nil || m.ToolExecutions == nil || m.ToolDuration == nil ||
		m.ActiveConnections == nil || m.ProviderRetries == nil {
		t.Fatal("New() left a metric field nil")
	}
}

func TestObserveToolCompletion(t *testing.T) {
	m := sharedTestMetrics()
	m.ObserveToolCompletion("run_command", true, 0.25)
	m.ObserveToolCompletion("run_command", false, 1.5)
	// No panic means WithLabelValues/Inc/Observe accepted both label sets.
}
