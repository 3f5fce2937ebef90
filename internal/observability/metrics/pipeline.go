package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PipelineMetrics struct {
	registry *prometheus.Registry

	analyzeTotal      *prometheus.CounterVec
	analyzeDuration   *prometheus.HistogramVec
	findingsTotal     *prometheus.CounterVec
	chunksIngested    *prometheus.CounterVec
	retrievalFailures *prometheus.CounterVec
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	analyzeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adgm",
			Subsystem: "pipeline",
			Name:      "document_analyze_total",
			Help:      "Total analyzed documents by status.",
		},
		[]string{"service", "status"},
	)
	analyzeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adgm",
			Subsystem: "pipeline",
			Name:      "document_analyze_duration_seconds",
			Help:      "Document analysis duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	findingsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adgm",
			Subsystem: "pipeline",
			Name:      "findings_total",
			Help:      "Total issue findings by origin and severity.",
		},
		[]string{"service", "origin", "severity"},
	)
	chunksIngested := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adgm",
			Subsystem: "corpus",
			Name:      "chunks_ingested_total",
			Help:      "Total reference corpus chunks stored.",
		},
		[]string{"service"},
	)
	retrievalFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adgm",
			Subsystem: "corpus",
			Name:      "retrieval_failures_total",
			Help:      "Total evidence retrieval calls that degraded to empty results.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		analyzeTotal,
		analyzeDuration,
		findingsTotal,
		chunksIngested,
		retrievalFailures,
	)

	return &PipelineMetrics{
		registry:          registry,
		analyzeTotal:      analyzeTotal,
		analyzeDuration:   analyzeDuration,
		findingsTotal:     findingsTotal,
		chunksIngested:    chunksIngested,
		retrievalFailures: retrievalFailures,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) RecordAnalyze(service, status string, duration time.Duration) {
	m.analyzeTotal.WithLabelValues(service, status).Inc()
	m.analyzeDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordFinding(service, origin, severity string) {
	m.findingsTotal.WithLabelValues(service, origin, severity).Inc()
}

func (m *PipelineMetrics) RecordChunksIngested(service string, count int) {
	m.chunksIngested.WithLabelValues(service).Add(float64(count))
}

func (m *PipelineMetrics) RecordRetrievalFailure(service string) {
	m.retrievalFailures.WithLabelValues(service).Inc()
}
