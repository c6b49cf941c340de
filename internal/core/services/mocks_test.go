package services

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// --- Mock implementations shared by the pipeline tests ---

// mockEmbedder returns small deterministic vectors.
type mockEmbedder struct {
	dims  int
	err   error
	short bool // return one vector too few

	mu     stdsync.Mutex
	calls  int
	inputs []string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.inputs = append(m.inputs, texts...)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	dims := m.Dimensions()
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v := make([]float32, dims)
		v[0] = 1
		v[1] = float32(len(text) % 7)
		out = append(out, v)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims == 0 {
		return 4
	}
	return m.dims
}

func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockGenerator returns a canned completion and records prompts.
type mockGenerator struct {
	output string
	err    error

	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockGenerator) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	return m.output, m.err
}

func (m *mockGenerator) ModelName() string          { return "mock-gen" }
func (m *mockGenerator) Ping(context.Context) error { return nil }
func (m *mockGenerator) Close() error               { return nil }

// failingIndex wraps a real index and fails selected operations.
type failingIndex struct {
	driven.VectorIndex
	ensureErr error
	upsertErr error
	searchErr error
	countErr  error
	trimErr   error
}

func (f *failingIndex) EnsureScope(ctx context.Context, scopeID string, cfg domain.ScopeConfig) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	return f.VectorIndex.EnsureScope(ctx, scopeID, cfg)
}

func (f *failingIndex) Upsert(ctx context.Context, scopeID string, records []domain.EmbeddingRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.VectorIndex.Upsert(ctx, scopeID, records)
}

func (f *failingIndex) Search(ctx context.Context, scopeID string, q []float32, topK int) ([]driven.VectorHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.VectorIndex.Search(ctx, scopeID, q, topK)
}

func (f *failingIndex) Count(ctx context.Context, scopeID string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.VectorIndex.Count(ctx, scopeID)
}

func (f *failingIndex) TrimSource(ctx context.Context, scopeID, sourceID string, keep int) error {
	if f.trimErr != nil {
		return f.trimErr
	}
	return f.VectorIndex.TrimSource(ctx, scopeID, sourceID, keep)
}

// failingTracker wraps a real tracker and fails selected operations.
type failingTracker struct {
	driven.IngestionTracker
	hasErr   error
	markErr  error
	clearErr error
	listErr  error
}

func (f *failingTracker) HasIngested(ctx context.Context, scopeID, sourceID string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	return f.IngestionTracker.HasIngested(ctx, scopeID, sourceID)
}

func (f *failingTracker) MarkIngested(ctx context.Context, scopeID, sourceID string) error {
	if f.markErr != nil {
		return f.markErr
	}
	return f.IngestionTracker.MarkIngested(ctx, scopeID, sourceID)
}

func (f *failingTracker) Clear(ctx context.Context, scopeID, sourceID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.IngestionTracker.Clear(ctx, scopeID, sourceID)
}

func (f *failingTracker) List(ctx context.Context, scopeID string) ([]domain.IngestionMarker, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.IngestionTracker.List(ctx, scopeID)
}

// recordingMetrics counts observations.
type recordingMetrics struct {
	mu          stdsync.Mutex
	chunks      map[string]int
	skipped     map[string]int
	failures    map[string]int
	questions   int
	generations int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		chunks:   make(map[string]int),
		skipped:  make(map[string]int),
		failures: make(map[string]int),
	}
}

func (m *recordingMetrics) ChunksIngested(scopeID string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[scopeID] += n
}

func (m *recordingMetrics) IngestSkipped(scopeID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped[scopeID]++
}

func (m *recordingMetrics) StepFailed(step string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[step]++
}

func (m *recordingMetrics) QuestionsParsed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions += n
}

func (m *recordingMetrics) GenerationLatency(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generations++
}
