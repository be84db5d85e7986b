package metrics

import "github.com/benhaub/abstractionlayer/pkg/eventqueue"

// NewEventQueueMetrics creates a new Prometheus-backed
// eventqueue.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to eventqueue.New,
// which results in zero overhead.
func NewEventQueueMetrics() eventqueue.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusEventQueueMetrics()
}

// newPrometheusEventQueueMetrics is implemented in
// pkg/metrics/prometheus/eventqueue.go. This indirection avoids an
// import cycle (prometheus needs this package's registry, this
// package must not import prometheus's concrete types) while keeping
// NewEventQueueMetrics's return type the eventqueue.Metrics interface.
var newPrometheusEventQueueMetrics func() eventqueue.Metrics

// RegisterEventQueueMetricsConstructor registers the Prometheus event
// queue metrics constructor. Called by
// pkg/metrics/prometheus/eventqueue.go during package initialization.
func RegisterEventQueueMetricsConstructor(constructor func() eventqueue.Metrics) {
	newPrometheusEventQueueMetrics = constructor
}
