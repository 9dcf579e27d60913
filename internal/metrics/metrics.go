// Package metrics provides the centralized Prometheus metrics registry for
// the odds pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "upstream_requests_total",
		Help:      "Total requests to the odds provider by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
	CacheReadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "cache_reads_total",
		Help:      "Total cache reads by resource key and result (hit or miss)",
	}, []string{"resource", "result"})
	RefreshesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "refreshes_total",
		Help:      "Total pipeline refreshes by resource key",
	}, []string{"resource"})
	SnapshotWriteFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "snapshot_write_failures_total",
		Help:      "Total failed cache snapshot writes",
	})
	QuotesDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "quotes_dropped_total",
		Help:      "Total malformed quotes dropped during consolidation and grading",
	})
)

// Gauge metrics
var (
	GradedBets = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "graded_bets",
		Help:      "Number of graded bets produced by the last refresh per resource key",
	}, []string{"resource"})
	UpstreamRequestsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "upstream_requests_remaining",
		Help:      "Last observed remaining request quota reported by the odds provider",
	})
)

// Histogram metrics
var (
	RefreshDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gridiron_edge",
		Name:      "refresh_duration_seconds",
		Help:      "Duration of full pipeline refreshes in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(UpstreamRequestsTotal)
		registry.MustRegister(CacheReadsTotal)
		registry.MustRegister(RefreshesTotal)
		registry.MustRegister(SnapshotWriteFailuresTotal)
		registry.MustRegister(QuotesDroppedTotal)

		registry.MustRegister(GradedBets)
		registry.MustRegister(UpstreamRequestsRemaining)

		registry.MustRegister(RefreshDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
