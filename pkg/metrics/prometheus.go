package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	registry       prometheus.Registerer

	// Recommendation pipeline
	recommendations       *prometheus.CounterVec
	recommendationLatency prometheus.Histogram
	candidatesRanked      prometheus.Histogram
	filterFallbacks       prometheus.Counter

	// Catalog provider
	catalogRefreshes *prometheus.CounterVec
	catalogCache     *prometheus.CounterVec
	catalogSize      prometheus.Gauge

	// Content fetcher
	fetchErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec
	errorRateByType     *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton collectors

// Custom registry to keep the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "assessrec",
		subsystem:      "recommender",
		latencyBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.recommendations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_total",
		Help:      "Recommendation requests by outcome kind",
	}, []string{"outcome"})

	m.recommendationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendation_latency_milliseconds",
		Help:      "End-to-end recommendation latency including URL fetch and catalog lookup",
		Buckets:   m.latencyBuckets,
	})

	m.candidatesRanked = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_ranked",
		Help:      "Number of candidates scored per request",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	m.filterFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "filter_fallback_total",
		Help:      "Requests where filtering eliminated every record and the fallback set was ranked",
	})

	m.catalogRefreshes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "refresh_total",
		Help:      "Catalog loads by the source that produced them",
	}, []string{"source"})

	m.catalogCache = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "cache_total",
		Help:      "Catalog cache lookups by result (hit/miss)",
	}, []string{"result"})

	m.catalogSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "size",
		Help:      "Number of assessment records in the cached catalog",
	})

	m.fetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "fetch",
		Name:      "errors_total",
		Help:      "Job description URL fetches that failed",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of errors by endpoint",
	}, []string{"endpoint", "method", "error_type"})

	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "errors_by_type_total",
		Help:      "Total number of errors by type",
	}, []string{"error_type", "severity"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordRecommendation counts a finished request by outcome and observes its latency.
func RecordRecommendation(outcome string, latencyMs float64) {
	globalManager.recommendations.WithLabelValues(outcome).Inc()
	globalManager.recommendationLatency.Observe(latencyMs)
}

// RecordCandidatesRanked observes the size of a ranked candidate set.
func RecordCandidatesRanked(n int) {
	globalManager.candidatesRanked.Observe(float64(n))
}

// RecordFilterFallback increments the filter fallback counter.
func RecordFilterFallback() {
	globalManager.filterFallbacks.Inc()
}

// RecordCatalogRefresh counts a catalog load from source.
func RecordCatalogRefresh(source string) {
	globalManager.catalogRefreshes.WithLabelValues(source).Inc()
}

// RecordCatalogCache counts a cache lookup; hit selects the label.
func RecordCatalogCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.catalogCache.WithLabelValues(result).Inc()
}

// UpdateCatalogSize sets the cached catalog size.
func UpdateCatalogSize(n int) {
	globalManager.catalogSize.Set(float64(n))
}

// RecordFetchError increments the fetch error counter.
func RecordFetchError() {
	globalManager.fetchErrors.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint increments the error counter for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByType increments the error counter for a type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry backing the global collectors.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
