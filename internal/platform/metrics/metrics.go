package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the display service.
type Metrics struct {
	DisplayBuilds        *prometheus.CounterVec
	DisplayBuildDuration prometheus.Histogram
	DisplayNodes         prometheus.Histogram
	CacheLookups         *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. Passing a fresh
// prometheus.NewRegistry keeps tests independent of the global registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DisplayBuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formview_display_builds_total",
			Help: "Display trees built, by input source (stored, preview)",
		}, []string{"source"}),
		DisplayBuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "formview_display_build_duration_seconds",
			Help:    "Duration of display tree construction",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		DisplayNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "formview_display_nodes",
			Help:    "Number of nodes in built display trees",
			Buckets: prometheus.ExponentialBuckets(4, 2, 10),
		}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "formview_display_cache_lookups_total",
			Help: "Display cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formview_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// ObserveBuild records one display build started at start.
func (m *Metrics) ObserveBuild(source string, start time.Time, nodes int) {
	m.DisplayBuilds.WithLabelValues(source).Inc()
	m.DisplayBuildDuration.Observe(time.Since(start).Seconds())
	m.DisplayNodes.Observe(float64(nodes))
}

// RecordCacheLookup counts a cache hit, miss or error.
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(route, status string, d time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(route, status).Observe(d.Seconds())
}
