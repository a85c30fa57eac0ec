// Package metrics provides Prometheus metrics for the scouting tool.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache outcomes recorded by RecordCache.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
	CacheError = "error"
)

// Manager owns every collector.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Loader
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	rowsLoaded    *prometheus.GaugeVec
	cacheEvents   *prometheus.CounterVec

	// Engines
	classified *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var customRegistry = prometheus.NewRegistry()

var globalManager = NewManager(WithPrometheusRegistry(customRegistry))

// NewManager creates a manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scout",
		subsystem:        "",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_fetches_total",
		Help:      "Population fetches by source, dataset kind and outcome",
	}, []string{"source", "kind", "outcome"})

	m.fetchDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_fetch_duration_milliseconds",
		Help:      "Population fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"source", "kind"})

	m.rowsLoaded = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "loader_rows",
		Help:      "Rows in the most recent population fetched per dataset kind",
	}, []string{"kind"})

	m.cacheEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_events_total",
		Help:      "Snapshot cache lookups by result (hit, miss, stale, error)",
	}, []string{"result"})

	m.classified = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classified_subjects_total",
		Help:      "Subjects labelled by the target rule set",
	}, []string{"label"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordFetch counts one fetch and its latency.
func (m *Manager) RecordFetch(source, kind, outcome string, durationMs float64) {
	m.fetches.WithLabelValues(source, kind, outcome).Inc()
	m.fetchDuration.WithLabelValues(source, kind).Observe(durationMs)
}

// SetRows records the size of the latest population for kind.
func (m *Manager) SetRows(kind string, n int) {
	m.rowsLoaded.WithLabelValues(kind).Set(float64(n))
}

// RecordCache counts one cache lookup result.
func (m *Manager) RecordCache(result string) {
	m.cacheEvents.WithLabelValues(result).Inc()
}

// RecordClassified adds n subjects to label's counter.
func (m *Manager) RecordClassified(label string, n int) {
	m.classified.WithLabelValues(label).Add(float64(n))
}

// RecordHTTPRequest counts one request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordFetch records a fetch on the global manager.
func RecordFetch(source, kind, outcome string, durationMs float64) {
	globalManager.RecordFetch(source, kind, outcome, durationMs)
}

// SetRows records a population size on the global manager.
func SetRows(kind string, n int) { globalManager.SetRows(kind, n) }

// RecordCache records a cache result on the global manager.
func RecordCache(result string) { globalManager.RecordCache(result) }

// RecordClassified records labelled subjects on the global manager.
func RecordClassified(label string, n int) { globalManager.RecordClassified(label, n) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// GetRegistry returns the registry the global manager writes to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
