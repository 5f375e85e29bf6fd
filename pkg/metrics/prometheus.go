// Package metrics provides Prometheus metrics for the hireloop service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyBuckets cover provider round trips in milliseconds.
var latencyBuckets = []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 30000} //nolint:gochecknoglobals // bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Evaluation pipeline
	evaluations          *prometheus.CounterVec
	evaluationLatency    prometheus.Histogram
	layerResults         *prometheus.CounterVec
	layerLatency         *prometheus.HistogramVec
	providerErrors       *prometheus.CounterVec
	duplicateRequests    prometheus.Counter
	feedbackReceived     *prometheus.CounterVec
	candidatesRegistered prometheus.Counter

	// Ranking
	rankingRuns      *prometheus.CounterVec
	rankingLatency   prometheus.Histogram
	rankedCandidates prometheus.Gauge
	rankingOmissions prometheus.Counter

	// Weight adaptation
	trainingRuns     *prometheus.CounterVec
	trainingLatency  prometheus.Histogram
	modelAccuracy    prometheus.Gauge
	currentWeight    *prometheus.GaugeVec
	feedbackConsumed prometheus.Counter

	// Rollups
	rollups       *prometheus.CounterVec
	estimatedCost prometheus.Gauge

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerActive  prometheus.Gauge
	workerLatency prometheus.Histogram
	workerErrors  prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hireloop",
		subsystem:        "core",
		histogramBuckets: latencyBuckets,
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

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
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

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.evaluations = m.counterVec("evaluations_total", "Evaluations produced by the orchestrator", "status")
	m.evaluationLatency = m.histogram("evaluation_latency_milliseconds", "End-to-end latency of one evaluation")
	m.layerResults = m.counterVec("layer_results_total", "Layer results by layer and source (provider or fallback)", "layer", "source")
	m.layerLatency = m.histogramVec("layer_latency_milliseconds", "Latency of one layer scorer", "layer", "source")
	m.providerErrors = m.counterVec("provider_errors_total", "Provider failures recovered by a fallback", "provider", "layer", "reason")
	m.duplicateRequests = m.counter("evaluation_requests_duplicate_total", "Evaluation requests dropped as duplicates")
	m.feedbackReceived = m.counterVec("feedback_received_total", "Employer feedback rows received", "decision")
	m.candidatesRegistered = m.counter("candidates_registered_total", "Candidates registered or updated")

	m.rankingRuns = m.counterVec("ranking_runs_total", "Ranking runs by status", "status")
	m.rankingLatency = m.histogram("ranking_latency_milliseconds", "Latency of one ranking run")
	m.rankedCandidates = m.gauge("ranked_candidates", "Candidates ranked by the most recent run")
	m.rankingOmissions = m.counter("ranking_omissions_total", "Candidates left out of a ranking run after a lookup failure")

	m.trainingRuns = m.counterVec("training_runs_total", "Weight adaptation runs by status", "status")
	m.trainingLatency = m.histogram("training_latency_milliseconds", "Latency of one training run")
	m.modelAccuracy = m.gauge("model_accuracy_percent", "Accuracy after the most recent committed training run")
	m.currentWeight = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "current_weight", Help: "Current layer weight",
	}, []string{"layer"})
	m.feedbackConsumed = m.counter("feedback_consumed_total", "Feedback rows consumed by training runs")

	m.rollups = m.counterVec("daily_rollups_total", "Daily metric rollups by status", "status")
	m.estimatedCost = m.gauge("estimated_provider_cost", "Estimated provider cost of the most recently rolled-up day")

	m.queueSize = m.gauge("queue_size", "Current size of the evaluation queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the evaluation queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue size divided by capacity")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Evaluation requests enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Evaluation requests dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Evaluation requests rejected by the queue")

	m.workerActive = m.gauge("worker_active_count", "Number of evaluation workers")
	m.workerLatency = m.histogram("worker_processing_latency_milliseconds", "Latency of one worker iteration")
	m.workerErrors = m.counter("worker_errors_total", "Worker iterations that failed")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// Evaluation pipeline.

// RecordEvaluation counts one evaluation outcome and its latency.
func RecordEvaluation(status string, latencyMs float64) {
	globalManager.evaluations.WithLabelValues(status).Inc()
	globalManager.evaluationLatency.Observe(latencyMs)
}

// RecordLayerResult counts a layer result and observes its latency.
func RecordLayerResult(layer, source string, latencyMs float64) {
	globalManager.layerResults.WithLabelValues(layer, source).Inc()
	globalManager.layerLatency.WithLabelValues(layer, source).Observe(latencyMs)
}

// RecordProviderError counts a provider failure that triggered a fallback.
func RecordProviderError(provider, layer, reason string) {
	globalManager.providerErrors.WithLabelValues(provider, layer, reason).Inc()
}

// RecordDuplicateRequest counts an evaluation request dropped as duplicate.
func RecordDuplicateRequest() {
	globalManager.duplicateRequests.Inc()
}

// RecordFeedbackReceived counts one feedback submission.
func RecordFeedbackReceived(decision string) {
	globalManager.feedbackReceived.WithLabelValues(decision).Inc()
}

// RecordCandidateRegistered counts one candidate upsert.
func RecordCandidateRegistered() {
	globalManager.candidatesRegistered.Inc()
}

// Ranking.

// RecordRankingRun counts one ranking run with its latency and size.
func RecordRankingRun(status string, latencyMs float64, ranked, omitted int) {
	globalManager.rankingRuns.WithLabelValues(status).Inc()
	globalManager.rankingLatency.Observe(latencyMs)
	globalManager.rankedCandidates.Set(float64(ranked))
	globalManager.rankingOmissions.Add(float64(omitted))
}

// Weight adaptation.

// RecordTrainingRun counts one training run and its latency.
func RecordTrainingRun(status string, latencyMs float64) {
	globalManager.trainingRuns.WithLabelValues(status).Inc()
	globalManager.trainingLatency.Observe(latencyMs)
}

// UpdateModelAccuracy sets the committed model accuracy.
func UpdateModelAccuracy(accuracy float64) {
	globalManager.modelAccuracy.Set(accuracy)
}

// UpdateCurrentWeights publishes the current weight triple.
func UpdateCurrentWeights(screening, technical, behavioral float64) {
	globalManager.currentWeight.WithLabelValues("screening").Set(screening)
	globalManager.currentWeight.WithLabelValues("technical").Set(technical)
	globalManager.currentWeight.WithLabelValues("behavioral").Set(behavioral)
}

// RecordFeedbackConsumed adds consumed feedback rows.
func RecordFeedbackConsumed(n int) {
	globalManager.feedbackConsumed.Add(float64(n))
}

// Rollups.

// RecordRollup counts one daily rollup.
func RecordRollup(status string) {
	globalManager.rollups.WithLabelValues(status).Inc()
}

// UpdateEstimatedCost sets the estimated provider cost of the latest rollup.
func UpdateEstimatedCost(cost float64) {
	globalManager.estimatedCost.Set(cost)
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Workers.

// UpdateWorkerActiveCount sets the number of workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// HTTP.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// System.

// UpdateSystemMemoryUsage sets the heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
