// Package metrics provides Prometheus metrics for the call analytics service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Report pipeline
	reportsBuilt       *prometheus.CounterVec
	reportsFailed      *prometheus.CounterVec
	reportBuildLatency *prometheus.HistogramVec
	callsPerReport     prometheus.Histogram

	// Store
	storeQueryLatency prometheus.Histogram
	storeCallsLoaded  prometheus.Counter
	storeErrors       prometheus.Counter

	// Queue
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueDequeued   prometheus.Counter
	queueRejections prometheus.Counter
	queueWait       prometheus.Histogram

	// Workers
	workerCount  prometheus.Gauge
	workerBusy   prometheus.Gauge
	workerErrors prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the Record* helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nakama",
		subsystem:        "analytics",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.reportsBuilt = auto.NewCounterVec(
		m.counter("reports_built_total", "Reports built successfully by kind"),
		[]string{"kind"},
	)
	m.reportsFailed = auto.NewCounterVec(
		m.counter("reports_failed_total", "Report builds that returned an error, by kind"),
		[]string{"kind"},
	)
	m.reportBuildLatency = auto.NewHistogramVec(
		m.histogram("report_build_latency_milliseconds", "Time spent loading calls and building a report", m.histogramBuckets),
		[]string{"kind"},
	)
	m.callsPerReport = auto.NewHistogram(
		m.histogram("calls_per_report", "Number of calls a report was built from",
			[]float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000}),
	)

	m.storeQueryLatency = auto.NewHistogram(
		m.histogram("store_query_latency_milliseconds", "Call store load latency", m.histogramBuckets),
	)
	m.storeCallsLoaded = auto.NewCounter(m.counter("store_calls_loaded_total", "Calls loaded from the store"))
	m.storeErrors = auto.NewCounter(m.counter("store_errors_total", "Call store load failures"))

	m.queueSize = auto.NewGauge(m.gauge("queue_size", "Report jobs waiting in the queue"))
	m.queueCapacity = auto.NewGauge(m.gauge("queue_capacity", "Maximum number of queued report jobs"))
	m.queueEnqueued = auto.NewCounter(m.counter("queue_enqueue_total", "Report jobs accepted by the queue"))
	m.queueDequeued = auto.NewCounter(m.counter("queue_dequeue_total", "Report jobs taken by workers"))
	m.queueRejections = auto.NewCounter(m.counter("queue_rejections_total", "Report jobs rejected because the queue was full or closed"))
	m.queueWait = auto.NewHistogram(
		m.histogram("queue_wait_milliseconds", "Time a job spent queued before a worker picked it up", m.histogramBuckets),
	)

	m.workerCount = auto.NewGauge(m.gauge("worker_count", "Number of running report workers"))
	m.workerBusy = auto.NewGauge(m.gauge("worker_busy_count", "Workers currently building a report"))
	m.workerErrors = auto.NewCounter(m.counter("worker_errors_total", "Jobs that finished with an error"))

	m.httpRequests = auto.NewCounterVec(
		m.counter("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogram("http_request_duration_milliseconds", "HTTP request duration", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpErrors = auto.NewCounterVec(
		m.counter("http_errors_total", "HTTP responses with status >= 400"),
		[]string{"endpoint", "method", "error_type"},
	)
}

// RecordReportBuilt counts a successful report and its build latency.
func RecordReportBuilt(kind string, latencyMs float64, calls int) {
	globalManager.reportsBuilt.WithLabelValues(kind).Inc()
	globalManager.reportBuildLatency.WithLabelValues(kind).Observe(latencyMs)
	globalManager.callsPerReport.Observe(float64(calls))
}

// RecordReportFailed counts a failed report build.
func RecordReportFailed(kind string) {
	globalManager.reportsFailed.WithLabelValues(kind).Inc()
}

// RecordStoreQuery records a call store load.
func RecordStoreQuery(latencyMs float64, calls int, err error) {
	globalManager.storeQueryLatency.Observe(latencyMs)
	if err != nil {
		globalManager.storeErrors.Inc()
		return
	}
	globalManager.storeCallsLoaded.Add(float64(calls))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter and observes the queue wait.
func RecordQueueDequeue(waitMs float64) {
	globalManager.queueDequeued.Inc()
	globalManager.queueWait.Observe(waitMs)
}

// RecordQueueRejection increments the rejected jobs counter.
func RecordQueueRejection() {
	globalManager.queueRejections.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// AddWorkerBusy adjusts the busy worker gauge by delta.
func AddWorkerBusy(delta int) {
	globalManager.workerBusy.Add(float64(delta))
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError records an HTTP error response.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

// Configure rebuilds the global manager with opts on a fresh registry. Call it
// once at startup, before the registry is handed to an HTTP handler.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	all := append([]Option{}, opts...)
	all = append(all, WithPrometheusRegistry(registry))
	globalManager = NewManager(all...)
	customRegistry = registry
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
