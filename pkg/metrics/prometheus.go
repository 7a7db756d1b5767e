// Package metrics provides Prometheus metrics for the scoresheet service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Event intake
	eventsReceived  prometheus.Counter
	eventsDuplicate prometheus.Counter
	eventsRejected  prometheus.Counter
	eventsAppended  prometheus.Counter

	// Derivations
	derivations       *prometheus.CounterVec
	derivationLatency *prometheus.HistogramVec

	// Store
	storeAppendLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram
	storedEvents       prometheus.Gauge
	storedMatches      prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueue       prometheus.Counter
	queueDequeue       prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActive            prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

// customRegistry keeps the default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a Manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scoresheet",
		subsystem:        "service",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.eventsReceived = m.counter("events_received_total", "Events posted to the service")
	m.eventsDuplicate = m.counter("events_duplicate_total", "Posted events dropped as duplicates")
	m.eventsRejected = m.counter("events_rejected_total", "Posted events rejected as malformed")
	m.eventsAppended = m.counter("events_appended_total", "Events appended to the match logs")

	m.derivations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "derivations_total", Help: "Derived views computed by kind",
	}, []string{"kind"})
	m.derivationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "derivation_latency_milliseconds", Help: "Time to derive a view in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"kind"})

	m.storeAppendLatency = m.histogram("store_append_latency_milliseconds", "Event append latency in milliseconds")
	m.storeQueryLatency = m.histogram("store_query_latency_milliseconds", "Store read latency in milliseconds")
	m.storedEvents = m.gauge("store_events", "Events held by the store")
	m.storedMatches = m.gauge("store_matches", "Matches held by the store")

	m.queueSize = m.gauge("queue_size", "Events waiting in the ingest queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the ingest queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Ingest queue size over capacity")
	m.queueEnqueue = m.counter("queue_enqueue_total", "Events enqueued")
	m.queueDequeue = m.counter("queue_dequeue_total", "Events dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Enqueue attempts refused")

	m.workerCount = m.gauge("worker_count", "Workers in the pool")
	m.workerActive = m.gauge("worker_active_count", "Workers currently appending an event")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time for a worker to append an event")
	m.workerErrors = m.counter("worker_errors_total", "Appends that failed in a worker")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total", Help: "HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_request_duration_milliseconds", Help: "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "errors_by_component_total", Help: "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordEventReceived counts a posted event.
func RecordEventReceived() { globalManager.eventsReceived.Inc() }

// RecordEventDuplicate counts a posted event dropped as a duplicate.
func RecordEventDuplicate() { globalManager.eventsDuplicate.Inc() }

// RecordEventRejected counts a malformed posted event.
func RecordEventRejected() { globalManager.eventsRejected.Inc() }

// RecordEventAppended counts an event written to a match log.
func RecordEventAppended() { globalManager.eventsAppended.Inc() }

// RecordDerivation counts a derived view of kind and its latency.
func RecordDerivation(kind string, latencyMs float64) {
	globalManager.derivations.WithLabelValues(kind).Inc()
	globalManager.derivationLatency.WithLabelValues(kind).Observe(latencyMs)
}

// RecordStoreAppendLatency records the latency of an append.
func RecordStoreAppendLatency(latencyMs float64) {
	globalManager.storeAppendLatency.Observe(latencyMs)
}

// RecordStoreQueryLatency records the latency of a read.
func RecordStoreQueryLatency(latencyMs float64) {
	globalManager.storeQueryLatency.Observe(latencyMs)
}

// UpdateStoreCounts sets the number of stored events and matches.
func UpdateStoreCounts(events, matches int) {
	globalManager.storedEvents.Set(float64(events))
	globalManager.storedMatches.Set(float64(matches))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) { globalManager.queueUtilization.Set(utilization) }

// RecordQueueEnqueue counts an enqueued event.
func RecordQueueEnqueue() { globalManager.queueEnqueue.Inc() }

// RecordQueueDequeue counts a dequeued event.
func RecordQueueDequeue() { globalManager.queueDequeue.Inc() }

// RecordQueueEnqueueError counts a refused enqueue.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// UpdateWorkerCount sets the pool size.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) { globalManager.workerActive.Set(float64(count)) }

// RecordWorkerProcessingLatency records the time to append one event.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed append.
func RecordWorkerError() { globalManager.workerErrors.Inc() }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records the duration of an HTTP request.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent counts an error of errorType in component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap in use.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the registry holding the service metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
