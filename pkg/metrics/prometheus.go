package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics of the series tools.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Run metrics
	runsTotal       prometheus.Counter
	runsFailed      prometheus.Counter
	runLastUnix     prometheus.Gauge
	runDuration     prometheus.Histogram
	rowsIngested    *prometheus.CounterVec
	diagnostics     *prometheus.CounterVec
	similarPairs    *prometheus.CounterVec
	categoryCompute *prometheus.HistogramVec
	participants    *prometheus.GaugeVec

	// Store metrics
	storedCategories prometheus.Gauge

	// Refresh metrics
	refreshQueue     prometheus.Gauge
	refreshEnqueued  *prometheus.CounterVec
	refreshRejected  *prometheus.CounterVec
	refreshProcessed *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var (
	mu             sync.RWMutex
	globalManager  *Manager
	customRegistry *prometheus.Registry
)

func init() { //nolint:gochecknoinits // global metrics setup
	Init()
}

// Init replaces the global manager with one registered on a fresh registry.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	m := NewManager(append([]Option{WithPrometheusRegistry(reg)}, opts...)...)
	mu.Lock()
	customRegistry = reg
	globalManager = m
	mu.Unlock()
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "vkct",
		subsystem:        "series",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // metric declarations
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.constLabels)

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "runs_total",
		Help: "Total number of season computations started",
	})
	m.runsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "runs_failed_total",
		Help: "Total number of season computations aborted by an error",
	})
	m.runLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "run_last_success_unix",
		Help: "Unix time of the last successful season computation",
	})
	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "run_duration_milliseconds",
		Help:    "Duration of a full season computation in milliseconds",
		Buckets: m.histogramBuckets,
	})
	m.rowsIngested = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "rows_ingested_total",
		Help: "Finisher rows read per category",
	}, []string{"category"})
	m.diagnostics = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "diagnostics_total",
		Help: "Diagnostics raised by severity and code",
	}, []string{"severity", "code"})
	m.similarPairs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "similar_pairs_total",
		Help: "Probable duplicate participant pairs by check scope",
	}, []string{"scope"})
	m.categoryCompute = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "category_compute_milliseconds",
		Help:    "Time to ingest, aggregate and rank one category in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"category"})
	m.participants = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "category_participants",
		Help: "Participants in the last computed standings of a category",
	}, []string{"category"})

	m.storedCategories = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "store_categories",
		Help: "Categories held by the standings store",
	})

	m.refreshQueue = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "refresh_queue_size",
		Help: "Recompute requests waiting for the refresh worker",
	})
	m.refreshEnqueued = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "refresh_enqueued_total",
		Help: "Accepted recompute requests by reason",
	}, []string{"reason"})
	m.refreshRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "refresh_rejected_total",
		Help: "Recompute requests not queued, by cause",
	}, []string{"cause"})
	m.refreshProcessed = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "refresh_duration_milliseconds",
		Help:    "Duration of recomputes run by the refresh worker in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"outcome"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, ConstLabels: labels,
		Name:    "http_request_duration_milliseconds",
		Help:    "HTTP request duration in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

func get() *Manager {
	mu.RLock()
	defer mu.RUnlock()
	if globalManager == nil || !globalManager.enabled {
		return nil
	}
	return globalManager
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// RecordRunStarted increments the runs counter.
func RecordRunStarted() {
	if m := get(); m != nil {
		m.runsTotal.Inc()
	}
}

// RecordRunFailed increments the failed runs counter.
func RecordRunFailed() {
	if m := get(); m != nil {
		m.runsFailed.Inc()
	}
}

// RecordRunCompleted records a successful run and its duration.
func RecordRunCompleted(d time.Duration) {
	if m := get(); m != nil {
		m.runDuration.Observe(millis(d))
		m.runLastUnix.Set(float64(time.Now().Unix()))
	}
}

// RecordRowsIngested adds n rows read for category.
func RecordRowsIngested(category string, n int) {
	if m := get(); m != nil {
		m.rowsIngested.WithLabelValues(category).Add(float64(n))
	}
}

// RecordDiagnostic counts one diagnostic.
func RecordDiagnostic(severity, code string) {
	if m := get(); m != nil {
		m.diagnostics.WithLabelValues(severity, code).Inc()
	}
}

// RecordSimilarPairs adds n reported pairs for scope.
func RecordSimilarPairs(scope string, n int) {
	if m := get(); m != nil {
		m.similarPairs.WithLabelValues(scope).Add(float64(n))
	}
}

// RecordCategoryComputed records one category's size and compute time.
func RecordCategoryComputed(category string, participants int, d time.Duration) {
	if m := get(); m != nil {
		m.participants.WithLabelValues(category).Set(float64(participants))
		m.categoryCompute.WithLabelValues(category).Observe(millis(d))
	}
}

// UpdateStoredCategories sets the number of categories in the store.
func UpdateStoredCategories(n int) {
	if m := get(); m != nil {
		m.storedCategories.Set(float64(n))
	}
}

// UpdateRefreshQueue sets the number of pending recompute requests.
func UpdateRefreshQueue(n int) {
	if m := get(); m != nil {
		m.refreshQueue.Set(float64(n))
	}
}

// RecordRefreshEnqueued counts one accepted recompute request.
func RecordRefreshEnqueued(reason string) {
	if m := get(); m != nil {
		m.refreshEnqueued.WithLabelValues(reason).Inc()
	}
}

// RecordRefreshRejected counts one recompute request that was not queued.
func RecordRefreshRejected(cause string) {
	if m := get(); m != nil {
		m.refreshRejected.WithLabelValues(cause).Inc()
	}
}

// RecordRefreshProcessed records one recompute handled by the refresh worker.
func RecordRefreshProcessed(outcome string, d time.Duration) {
	if m := get(); m != nil {
		m.refreshProcessed.WithLabelValues(outcome).Observe(millis(d))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if m := get(); m != nil {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if m := get(); m != nil {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// GetRegistry returns the Prometheus registry of the global manager.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	return customRegistry
}
