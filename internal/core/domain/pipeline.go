package domain

// PipelineState is a step of the quiz generation state machine.
type PipelineState string

// Pipeline states in execution order. StateError is reachable from any step.
const (
	StatePending    PipelineState = "pending"
	StateChunking   PipelineState = "chunking"
	StateEmbedding  PipelineState = "embedding"
	StateRetrieving PipelineState = "retrieving"
	StatePrompting  PipelineState = "prompting"
	StateGenerating PipelineState = "generating"
	StateParsing    PipelineState = "parsing"
	StateDone       PipelineState = "done"
	StateError      PipelineState = "error"
)

// String returns the string representation.
func (s PipelineState) String() string {
	return string(s)
}

// IsTerminal returns true for states that end a run.
func (s PipelineState) IsTerminal() bool {
	return s == StateDone || s == StateError
}
