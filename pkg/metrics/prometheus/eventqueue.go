package prometheus

import (
	"time"

	"github.com/benhaub/abstractionlayer/pkg/eventqueue"
	"github.com/benhaub/abstractionlayer/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterEventQueueMetricsConstructor(NewEventQueueMetrics)
}

// eventQueueMetrics is the Prometheus implementation of
// eventqueue.Metrics.
type eventQueueMetrics struct {
	backlog          prometheus.Gauge
	dispatchDuration *prometheus.HistogramVec
}

// NewEventQueueMetrics creates a new Prometheus-backed
// eventqueue.Metrics instance. Returns nil if metrics are not enabled.
func NewEventQueueMetrics() eventqueue.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()
	return &eventQueueMetrics{
		backlog: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "abstractionlayer_eventqueue_backlog",
				Help: "Number of queued (non-inline) events waiting to run",
			},
		),
		dispatchDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "abstractionlayer_eventqueue_dispatch_duration_milliseconds",
				Help: "Duration of an event's callable, by whether it ran inline",
				Buckets: []float64{
					0.01, 0.1, 0.5, 1, 5, 10, 50, 100, 500,
				},
			},
			[]string{"inline"},
		),
	}
}

func (m *eventQueueMetrics) SetBacklog(depth int) {
	if m == nil {
		return
	}
	m.backlog.Set(float64(depth))
}

func (m *eventQueueMetrics) ObserveDispatch(d time.Duration, inline bool) {
	if m == nil {
		return
	}
	label := "false"
	if inline {
		label = "true"
	}
	m.dispatchDuration.WithLabelValues(label).Observe(float64(d.Microseconds()) / 1000)
}
