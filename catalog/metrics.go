package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for catalog fetches.
type Metrics struct {
	Registry          *prometheus.Registry
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   prometheus.Histogram
	ErrorsTotal       *prometheus.CounterVec
	TransitionsTotal  *prometheus.CounterVec
	SimilarItemsTotal prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total product detail requests issued, by outcome.",
		},
		[]string{"outcome"},
	)
	requestDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "HTTP request latency for product detail requests.",
			Buckets: prometheus.DefBuckets,
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_errors_total",
			Help: "Total number of product detail failures by reason.",
		},
		[]string{"reason"},
	)
	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "product_fetch_transitions_total",
			Help: "Fetch status transitions, by target status.",
		},
		[]string{"status"},
	)
	similarItems := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_similar_products_total",
			Help: "Total number of similar products normalized.",
		},
	)

	registry.MustRegister(requests, requestDuration, errorsTotal, transitions, similarItems)

	return &Metrics{
		Registry:          registry,
		RequestsTotal:     requests,
		RequestDuration:   requestDuration,
		ErrorsTotal:       errorsTotal,
		TransitionsTotal:  transitions,
		SimilarItemsTotal: similarItems,
	}
}

// IncRequest increments the requests counter for an outcome label.
func (m *Metrics) IncRequest(outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.Observe(d.Seconds())
}

// IncError increments the errors counter for a reason label.
func (m *Metrics) IncError(reason string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(reason).Inc()
}

// IncTransition counts a fetch status transition.
func (m *Metrics) IncTransition(status string) {
	if m == nil {
		return
	}
	m.TransitionsTotal.WithLabelValues(status).Inc()
}

// AddSimilarItems counts normalized similar products.
func (m *Metrics) AddSimilarItems(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SimilarItemsTotal.Add(float64(n))
}
