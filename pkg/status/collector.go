package status

import "github.com/prometheus/client_golang/prometheus"

// Collector is a prometheus.Collector that reports live gauges for
// thread, semaphore, queue and timer counts, idle percent, active
// connections and interface up state by pulling a fresh
// Snapshot from an Aggregator on every scrape, rather than keeping its
// own counters in sync with every mutation -- the same "scrape pulls
// current state" approach the teacher's pkg/metrics/prometheus uses
// for gauges that track a live count.
type Collector struct {
	aggregator *Aggregator

	threadCount    *prometheus.Desc
	semaphoreCount *prometheus.Desc
	queueCount     *prometheus.Desc
	timerCount     *prometheus.Desc
	idlePercent    *prometheus.Desc
	activeConns    *prometheus.Desc
	networkUp      *prometheus.Desc
}

// NewCollector creates a Collector that scrapes agg.
func NewCollector(agg *Aggregator) *Collector {
	return &Collector{
		aggregator: agg,
		threadCount: prometheus.NewDesc(
			"abstractionlayer_osal_thread_count", "Number of registered threads", nil, nil),
		semaphoreCount: prometheus.NewDesc(
			"abstractionlayer_osal_semaphore_count", "Number of registered semaphores", nil, nil),
		queueCount: prometheus.NewDesc(
			"abstractionlayer_osal_queue_count", "Number of registered queues", nil, nil),
		timerCount: prometheus.NewDesc(
			"abstractionlayer_osal_timer_count", "Number of registered timers", nil, nil),
		idlePercent: prometheus.NewDesc(
			"abstractionlayer_osal_idle_percent", "Running average of idle vs busy thread time", nil, nil),
		activeConns: prometheus.NewDesc(
			"abstractionlayer_network_active_connections", "Accepted connections per IP server", []string{"server"}, nil),
		networkUp: prometheus.NewDesc(
			"abstractionlayer_network_up", "Whether a network interface reports itself up", []string{"interface"}, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.threadCount
	ch <- c.semaphoreCount
	ch <- c.queueCount
	ch <- c.timerCount
	ch <- c.idlePercent
	ch <- c.activeConns
	ch <- c.networkUp
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.aggregator.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.threadCount, prometheus.GaugeValue, float64(snap.OS.ThreadCount))
	ch <- prometheus.MustNewConstMetric(c.semaphoreCount, prometheus.GaugeValue, float64(snap.OS.SemaphoreCount))
	ch <- prometheus.MustNewConstMetric(c.queueCount, prometheus.GaugeValue, float64(snap.OS.QueueCount))
	ch <- prometheus.MustNewConstMetric(c.timerCount, prometheus.GaugeValue, float64(snap.OS.TimerCount))
	ch <- prometheus.MustNewConstMetric(c.idlePercent, prometheus.GaugeValue, snap.OS.IdlePercent)

	for _, srv := range snap.IpServers {
		ch <- prometheus.MustNewConstMetric(c.activeConns, prometheus.GaugeValue, float64(len(srv.Accepted)), srv.Name)
	}
	for _, net := range snap.Networks {
		up := 0.0
		if net.IsUp {
			up = 1.0
		}
		ch <- prometheus.MustNewConstMetric(c.networkUp, prometheus.GaugeValue, up, net.Name)
	}
}
