package simplehttp

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the prometheus collectors a Server updates as it serves
// connections (SPEC_FULL.md's domain-stack metrics section). A Server
// constructed with a nil Options.Metrics records no metrics at all.
type Metrics struct {
	RequestsTotal    prometheus.Counter
	BadRequestsTotal prometheus.Counter
	ActiveWorkers    prometheus.Gauge
	QueuedTasks      prometheus.Gauge
}

// NewMetrics constructs a Metrics with the given namespace applied as a
// prefix to every collector name (e.g. "simplehttp_requests_total").
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total requests that were parsed, handled and drained without error.",
		}),
		BadRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bad_requests_total",
			Help:      "Total connections rejected as malformed before reaching a handler.",
		}),
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workers",
			Help:      "Workers currently serving a connection.",
		}),
		QueuedTasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queued_tasks",
			Help:      "Accepted connections waiting for a free worker.",
		}),
	}
}

// Collectors returns every collector so callers can register them with a
// prometheus.Registerer in one call:
//
//	registry.MustRegister(metrics.Collectors()...)
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RequestsTotal,
		m.BadRequestsTotal,
		m.ActiveWorkers,
		m.QueuedTasks,
	}
}
