// Package metrics provides Prometheus metrics collection for the HTTP
// surface and the dispatch pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector owns all application metric vectors. It satisfies the dispatch
// observer contract of the chat package.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dispatchesTotal  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// NewCollector registers the metric vectors on reg. Pass
// prometheus.DefaultRegisterer in production; tests use a fresh registry to
// avoid duplicate-registration panics.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		dispatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Total number of chat dispatches by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		dispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Chat dispatch duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),
	}
}

// ObserveHTTP records one served HTTP request.
func (c *Collector) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveDispatch records one completed chat dispatch.
func (c *Collector) ObserveDispatch(provider, outcome string, elapsed time.Duration) {
	c.dispatchesTotal.WithLabelValues(provider, outcome).Inc()
	c.dispatchDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}
