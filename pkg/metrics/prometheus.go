// Package metrics provides Prometheus metrics for the recession data pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Refresh cycle
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	lastRefreshUnix prometheus.Gauge

	// Per-source ingestion
	sourceFetchDuration   *prometheus.HistogramVec
	sourceObservations    *prometheus.GaugeVec
	sourceLastObservation *prometheus.GaugeVec
	sourceErrors          *prometheus.CounterVec

	// Fused table shape
	fusedRows     prometheus.Gauge
	fusedColumns  prometheus.Gauge
	labelsUnknown *prometheus.GaugeVec

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "recessionwatch",
		subsystem:        "pipeline",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		constLabels:      make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.refreshes = auto.NewCounterVec(
		m.counterOpts("refreshes_total", "Total number of pipeline refreshes by outcome"),
		[]string{"status"},
	)
	m.refreshDuration = auto.NewHistogram(
		m.histogramOpts("refresh_duration_milliseconds", "Duration of a full pipeline refresh in milliseconds"),
	)
	m.lastRefreshUnix = auto.NewGauge(
		m.gaugeOpts("last_refresh_unix", "Unix timestamp of the last successful refresh"),
	)

	m.sourceFetchDuration = auto.NewHistogramVec(
		m.histogramOpts("source_fetch_duration_milliseconds", "Duration of a source fetch in milliseconds"),
		[]string{"source"},
	)
	m.sourceObservations = auto.NewGaugeVec(
		m.gaugeOpts("source_observations", "Raw observations returned by the last fetch of a source"),
		[]string{"source"},
	)
	m.sourceLastObservation = auto.NewGaugeVec(
		m.gaugeOpts("source_last_observation_unix", "Unix timestamp of the most recent observation of a source"),
		[]string{"source"},
	)
	m.sourceErrors = auto.NewCounterVec(
		m.counterOpts("source_errors_total", "Total number of failed source fetches"),
		[]string{"source"},
	)

	m.fusedRows = auto.NewGauge(m.gaugeOpts("fused_rows", "Rows in the latest fused table"))
	m.fusedColumns = auto.NewGauge(m.gaugeOpts("fused_columns", "Columns in the latest fused table"))
	m.labelsUnknown = auto.NewGaugeVec(
		m.gaugeOpts("label_unknown_rows", "Rows of the latest fused table whose label is not yet known"),
		[]string{"label"},
	)

	m.storeLatency = auto.NewHistogramVec(
		m.histogramOpts("store_latency_milliseconds", "Table store operation latency in milliseconds"),
		[]string{"op"},
	)
	m.storeErrors = auto.NewCounterVec(
		m.counterOpts("store_errors_total", "Total number of failed table store operations"),
		[]string{"op"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	gc := m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds")
	gc.Buckets = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}
	m.systemGCPauseTime = auto.NewHistogram(gc)
}

// RecordRefresh counts a refresh and observes its duration.
func RecordRefresh(status string, durationMs float64) {
	globalManager.refreshes.WithLabelValues(status).Inc()
	globalManager.refreshDuration.Observe(durationMs)
}

// UpdateLastRefresh sets the time of the last successful refresh.
func UpdateLastRefresh(unix int64) {
	globalManager.lastRefreshUnix.Set(float64(unix))
}

// RecordSourceFetch observes the duration of one source fetch.
func RecordSourceFetch(source string, durationMs float64) {
	globalManager.sourceFetchDuration.WithLabelValues(source).Observe(durationMs)
}

// UpdateSourceObservations sets the raw observation count of a source.
func UpdateSourceObservations(source string, count int) {
	globalManager.sourceObservations.WithLabelValues(source).Set(float64(count))
}

// UpdateSourceLastObservation sets the date of the newest raw observation.
func UpdateSourceLastObservation(source string, unix int64) {
	globalManager.sourceLastObservation.WithLabelValues(source).Set(float64(unix))
}

// RecordSourceError counts a failed fetch.
func RecordSourceError(source string) {
	globalManager.sourceErrors.WithLabelValues(source).Inc()
}

// UpdateFusedShape sets the dimensions of the latest fused table.
func UpdateFusedShape(rows, columns int) {
	globalManager.fusedRows.Set(float64(rows))
	globalManager.fusedColumns.Set(float64(columns))
}

// UpdateLabelUnknown sets how many rows of a label column are unknown.
func UpdateLabelUnknown(label string, count int) {
	globalManager.labelsUnknown.WithLabelValues(label).Set(float64(count))
}

// RecordStoreLatency observes a store operation.
func RecordStoreLatency(op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed store operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
