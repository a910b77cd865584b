package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog"

type Metrics struct {
	registry *prometheus.Registry

	OrdersCreated        prometheus.Counter
	OrdersRejected       prometheus.Counter
	OrderFailures        prometheus.Counter
	EventPublishFailures prometheus.Counter
	PlacementDuration    prometheus.Histogram
}

// New registers the order metrics on a dedicated registry along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Orders accepted and committed.",
		}),
		OrdersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Orders rejected for insufficient stock or unknown products.",
		}),
		OrderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_failures_total",
			Help:      "Orders that failed on infrastructure errors, including stock version conflicts.",
		}),
		EventPublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_events_publish_failures_total",
			Help:      "OrderCreated events that could not be published after commit.",
		}),
		PlacementDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_placement_seconds",
			Help:      "Time spent placing an order, from validation to commit.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.OrdersCreated,
		m.OrdersRejected,
		m.OrderFailures,
		m.EventPublishFailures,
		m.PlacementDuration,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
