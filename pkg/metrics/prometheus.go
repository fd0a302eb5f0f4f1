package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	SearchRequests  *prometheus.CounterVec
	RefreshRuns     prometheus.Counter
	RefreshErrors   prometheus.Counter
	RefreshDuration prometheus.Histogram
	TrackedTrips    prometheus.Gauge
}

// NewMetrics creates new prometheus metrics on the default registry
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith creates new prometheus metrics on the given registerer
func NewMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_searches_total",
			Help:      "The total number of flight search calls by provider and status",
		}, []string{"provider", "status"}),
		RefreshRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_refresh_runs_total",
			Help:      "The total number of completed price refresh runs",
		}),
		RefreshErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_refresh_errors_total",
			Help:      "The total number of per-trip refresh failures",
		}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "price_refresh_duration_seconds",
			Help:      "Time taken to refresh all tracked trip prices",
			Buckets:   prometheus.DefBuckets,
		}),
		TrackedTrips: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_trips",
			Help:      "The number of trips currently tracked",
		}),
	}
}
