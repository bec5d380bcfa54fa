package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	aiAttempts        *prometheus.CounterVec
	aiAttemptDuration *prometheus.HistogramVec
	datasetWrites     *prometheus.CounterVec
	corruptions       prometheus.Counter
	exportRenders     *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	aiSuccessCount       uint64
	aiFailureCount       uint64
	datasetWriteCount    uint64
	corruptionCount      uint64
}

// MetricsSnapshot is a JSON friendly summary of the collected counters.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	AIAttemptSuccesses       uint64    `json:"aiAttemptSuccesses"`
	AIAttemptFailures        uint64    `json:"aiAttemptFailures"`
	DatasetWrites            uint64    `json:"datasetWrites"`
	CorruptionRecoveries     uint64    `json:"corruptionRecoveries"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	aiAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ai_generation_attempts_total",
		Help: "Generation attempts per model and outcome",
	}, []string{"model", "outcome"})

	aiAttemptDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ai_generation_duration_seconds",
		Help:    "Duration of a full generation call including fallback",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
	}, []string{"operation"})

	datasetWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dataset_writes_total",
		Help: "Dataset persistence writes by outcome",
	}, []string{"outcome"})

	corruptions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dataset_corruption_recoveries_total",
		Help: "Times a corrupted stored dataset was replaced by the default seed",
	})

	exportRenders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_renders_total",
		Help: "Rendered exports by kind and outcome",
	}, []string{"kind", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, aiAttempts, aiAttemptDuration, datasetWrites, corruptions, exportRenders, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		aiAttempts:        aiAttempts,
		aiAttemptDuration: aiAttemptDuration,
		datasetWrites:     datasetWrites,
		corruptions:       corruptions,
		exportRenders:     exportRenders,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordAIAttempt counts one model attempt.
func (m *MetricsService) RecordAIAttempt(model string, success bool) {
	if m == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
		atomic.AddUint64(&m.aiSuccessCount, 1)
	} else {
		atomic.AddUint64(&m.aiFailureCount, 1)
	}
	m.aiAttempts.WithLabelValues(model, outcome).Inc()
}

// ObserveAIGeneration records how long a generation call took across all attempts.
func (m *MetricsService) ObserveAIGeneration(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.aiAttemptDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordDatasetWrite counts a persistence write.
func (m *MetricsService) RecordDatasetWrite(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.datasetWrites.WithLabelValues("failure").Inc()
		return
	}
	m.datasetWrites.WithLabelValues("success").Inc()
	atomic.AddUint64(&m.datasetWriteCount, 1)
}

// RecordCorruption counts a corrupted-slot recovery.
func (m *MetricsService) RecordCorruption() {
	if m == nil {
		return
	}
	m.corruptions.Inc()
	atomic.AddUint64(&m.corruptionCount, 1)
}

// RecordExport counts a rendered export.
func (m *MetricsService) RecordExport(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.exportRenders.WithLabelValues(kind, outcome).Inc()
}

// Snapshot returns aggregated metrics suitable for the health endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		AIAttemptSuccesses:       atomic.LoadUint64(&m.aiSuccessCount),
		AIAttemptFailures:        atomic.LoadUint64(&m.aiFailureCount),
		DatasetWrites:            atomic.LoadUint64(&m.datasetWriteCount),
		CorruptionRecoveries:     atomic.LoadUint64(&m.corruptionCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
