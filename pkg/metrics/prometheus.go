// Package metrics provides Prometheus metrics for the sensor upload receiver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload outcome label values.
const (
	ResultSuccess = "success"
	ResultInvalid = "invalid"
	ResultFailed  = "failed"
)

// Manager manages all Prometheus metrics for the receiver.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	sizeBuckets      []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Upload metrics
	uploads       *prometheus.CounterVec
	uploadBytes   prometheus.Histogram
	samples       *prometheus.CounterVec
	uploadLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
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
		namespace:        "sensor",
		subsystem:        "receiver",
		histogramBuckets: prometheus.DefBuckets,
		// 1 KiB .. 64 MiB
		sizeBuckets: prometheus.ExponentialBuckets(1024, 4, 9),
		enabled:     true,
		constLabels: prometheus.Labels{},
		registry:    prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.uploads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "uploads_total",
		Help:        "Total number of upload attempts by result",
		ConstLabels: m.constLabels,
	}, []string{"result"})

	m.uploadBytes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upload_bytes",
		Help:        "Size in bytes of persisted upload files",
		Buckets:     m.sizeBuckets,
		ConstLabels: m.constLabels,
	})

	m.samples = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "samples_total",
		Help:        "Total number of sensor samples received per category",
		ConstLabels: m.constLabels,
	}, []string{"category"})

	m.uploadLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "upload_latency_milliseconds",
		Help:        "Time spent parsing, persisting and summarising an upload",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_total",
		Help:        "Total number of failed HTTP requests by endpoint and error type",
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "error_type"})
}

// RecordUpload counts an upload attempt with the given result label.
func (m *Manager) RecordUpload(result string) {
	if !m.enabled {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

// RecordUploadBytes observes the size of a persisted file.
func (m *Manager) RecordUploadBytes(size int64) {
	if !m.enabled {
		return
	}
	m.uploadBytes.Observe(float64(size))
}

// RecordSamples adds n samples to the category counter.
func (m *Manager) RecordSamples(category string, n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.samples.WithLabelValues(category).Add(float64(n))
}

// RecordUploadLatency observes end-to-end upload processing time.
func (m *Manager) RecordUploadLatency(latencyMs float64) {
	if !m.enabled {
		return
	}
	m.uploadLatency.Observe(latencyMs)
}

// RecordHTTPRequest counts a served request.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration observes request latency.
func (m *Manager) RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts a failed request.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// Global convenience functions backed by the default manager.

// RecordUpload counts an upload attempt on the global manager.
func RecordUpload(result string) { globalManager.RecordUpload(result) }

// RecordUploadBytes observes a persisted file size on the global manager.
func RecordUploadBytes(size int64) { globalManager.RecordUploadBytes(size) }

// RecordSamples adds category samples on the global manager.
func RecordSamples(category string, n int) { globalManager.RecordSamples(category, n) }

// RecordUploadLatency observes upload latency on the global manager.
func RecordUploadLatency(latencyMs float64) { globalManager.RecordUploadLatency(latencyMs) }

// RecordHTTPRequest counts a request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode)
}

// RecordHTTPRequestDuration observes request latency on the global manager.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint counts a failed request on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
