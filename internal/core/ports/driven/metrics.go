package driven

import "time"

// PipelineMetrics records pipeline counters and latencies.
// This is an optional service - use NopMetrics when nothing is configured.
type PipelineMetrics interface {
	// ChunksIngested counts chunks embedded and upserted into a scope.
	ChunksIngested(scopeID string, n int)

	// IngestSkipped counts sources skipped because a marker existed.
	IngestSkipped(scopeID string)

	// StepFailed counts failures by pipeline step.
	StepFailed(step string)

	// QuestionsParsed counts questions emitted by the parser.
	QuestionsParsed(n int)

	// GenerationLatency observes the duration of a generation call.
	GenerationLatency(d time.Duration)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

var _ PipelineMetrics = NopMetrics{}

func (NopMetrics) ChunksIngested(string, int)      {}
func (NopMetrics) IngestSkipped(string)            {}
func (NopMetrics) StepFailed(string)               {}
func (NopMetrics) QuestionsParsed(int)             {}
func (NopMetrics) GenerationLatency(time.Duration) {}
