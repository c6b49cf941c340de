// Package metrics records pipeline metrics with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "quizrag"

// Ensure Prometheus implements the interface.
var _ driven.PipelineMetrics = (*Prometheus)(nil)

// Prometheus implements driven.PipelineMetrics on a private registry.
type Prometheus struct {
	registry *prometheus.Registry

	chunksIngested    *prometheus.CounterVec
	ingestSkipped     *prometheus.CounterVec
	stepFailures      *prometheus.CounterVec
	questionsParsed   prometheus.Counter
	generationLatency prometheus.Histogram
}

// NewPrometheus creates the pipeline metrics. An empty namespace uses DefaultNamespace.
func NewPrometheus(namespace string) *Prometheus {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Prometheus{
		registry: prometheus.NewRegistry(),
	}

	m.chunksIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_ingested_total",
			Help:      "Total number of transcript chunks embedded and stored",
		},
		[]string{"scope"},
	)

	m.ingestSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_skipped_total",
			Help:      "Total number of sources skipped because they were already ingested",
		},
		[]string{"scope"},
	)

	m.stepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_step_failures_total",
			Help:      "Total number of pipeline failures by step",
		},
		[]string{"step"},
	)

	m.questionsParsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_parsed_total",
			Help:      "Total number of quiz questions parsed from model output",
		},
	)

	// Generation calls run from about a second up to the configured timeout.
	m.generationLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Duration of text generation calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		},
	)

	m.registry.MustRegister(
		m.chunksIngested,
		m.ingestSkipped,
		m.stepFailures,
		m.questionsParsed,
		m.generationLatency,
	)

	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// ChunksIngested counts chunks stored into a scope.
func (m *Prometheus) ChunksIngested(scopeID string, n int) {
	if n <= 0 {
		return
	}
	m.chunksIngested.WithLabelValues(scopeID).Add(float64(n))
}

// IngestSkipped counts a source skipped by the ingestion tracker.
func (m *Prometheus) IngestSkipped(scopeID string) {
	m.ingestSkipped.WithLabelValues(scopeID).Inc()
}

// StepFailed counts a failure in a pipeline step.
func (m *Prometheus) StepFailed(step string) {
	m.stepFailures.WithLabelValues(step).Inc()
}

// QuestionsParsed counts parsed questions.
func (m *Prometheus) QuestionsParsed(n int) {
	if n <= 0 {
		return
	}
	m.questionsParsed.Add(float64(n))
}

// GenerationLatency observes the duration of a generation call.
func (m *Prometheus) GenerationLatency(d time.Duration) {
	m.generationLatency.Observe(d.Seconds())
}

// Registry returns the registry the metrics are registered on.
func (m *Prometheus) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler that serves the metrics.
func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
