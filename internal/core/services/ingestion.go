package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
	"github.com/custodia-labs/quizrag/internal/core/ports/driving"
	"github.com/custodia-labs/quizrag/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// Chunker splits transcript text into chunks.
type Chunker interface {
	Chunk(scopeID, sourceID, text string) []domain.TranscriptChunk
}

// IngestionService chunks, embeds and stores transcripts.
//
// Concurrent calls for the same (scope, source) within a process are
// serialised so the second one sees the first one's marker. Across processes
// ingestion is at-least-once.
type IngestionService struct {
	chunker  Chunker
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	tracker  driven.IngestionTracker
	metrics  driven.PipelineMetrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIngestionService creates a new ingestion service.
func NewIngestionService(
	chunker Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	tracker driven.IngestionTracker,
) *IngestionService {
	return &IngestionService{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		tracker:  tracker,
		metrics:  driven.NopMetrics{},
		locks:    make(map[string]*sync.Mutex),
	}
}

// SetMetrics sets the metrics sink. A nil sink disables metrics.
func (s *IngestionService) SetMetrics(m driven.PipelineMetrics) {
	if m == nil {
		m = driven.NopMetrics{}
	}
	s.metrics = m
}

// Ingest chunks, embeds and upserts one transcript into a scope, then
// records a marker. Sources with a marker are skipped unless force is set.
func (s *IngestionService) Ingest(
	ctx context.Context, scopeID string, source domain.Source, force bool,
) (*domain.IngestResult, error) {
	if err := domain.ValidateScopeID(scopeID); err != nil {
		return nil, err
	}
	if source.ID == "" {
		return nil, fmt.Errorf("%w: source id is required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	unlock := s.lock(scopeID, source.ID)
	defer unlock()

	logger.Section("Ingest " + scopeID + "/" + source.ID)
	result := &domain.IngestResult{ScopeID: scopeID, SourceID: source.ID}

	if !force && s.tracker != nil {
		done, err := s.tracker.HasIngested(ctx, scopeID, source.ID)
		if err != nil {
			return nil, fmt.Errorf("check ingestion marker: %w", err)
		}
		if done {
			logger.Info("Source %s already ingested into %s, skipping", source.ID, scopeID)
			s.metrics.IngestSkipped(scopeID)
			result.Skipped = true
			return result, nil
		}
	}

	logger.Step(scopeID, domain.StateChunking.String())
	chunks := s.chunker.Chunk(scopeID, source.ID, source.Text)
	if len(chunks) == 0 {
		s.metrics.StepFailed(domain.StateChunking.String())
		return nil, domain.NewStepError(domain.StateChunking,
			fmt.Errorf("%w: transcript %s is empty", domain.ErrInvalidInput, source.ID))
	}
	logger.Debug("Chunked %s into %d chunks", source.ID, len(chunks))

	logger.Step(scopeID, domain.StateEmbedding.String())
	records, err := s.embed(ctx, chunks)
	if err != nil {
		s.metrics.StepFailed(domain.StateEmbedding.String())
		return nil, domain.NewStepError(domain.StateEmbedding, err)
	}

	cfg := domain.ScopeConfig{Dimension: len(records[0].Vector), Metric: domain.MetricCosine}
	if err := s.index.EnsureScope(ctx, scopeID, cfg); err != nil {
		s.metrics.StepFailed(domain.StateEmbedding.String())
		return nil, domain.NewStepError(domain.StateEmbedding, vectorStoreErr("ensure scope", err))
	}
	if err := s.index.Upsert(ctx, scopeID, records); err != nil {
		s.metrics.StepFailed(domain.StateEmbedding.String())
		return nil, domain.NewStepError(domain.StateEmbedding, vectorStoreErr("upsert", err))
	}
	if err := s.index.TrimSource(ctx, scopeID, source.ID, len(records)); err != nil {
		s.metrics.StepFailed(domain.StateEmbedding.String())
		return nil, domain.NewStepError(domain.StateEmbedding, vectorStoreErr("trim", err))
	}

	if s.tracker != nil {
		if err := s.tracker.MarkIngested(ctx, scopeID, source.ID); err != nil {
			// The records are stored; a missing marker only costs a re-ingest.
			logger.Warn("Failed to record marker for %s/%s: %v", scopeID, source.ID, err)
		}
	}

	s.metrics.ChunksIngested(scopeID, len(records))
	logger.Info("Ingested %d chunks from %s into %s", len(records), source.ID, scopeID)

	result.Chunks = len(records)
	return result, nil
}

// IngestBatch ingests every source. Failures are logged and skipped so the
// rest of the batch continues; they are returned joined at the end.
func (s *IngestionService) IngestBatch(
	ctx context.Context, scopeID string, sources []domain.Source, force bool,
) ([]domain.IngestResult, error) {
	results := make([]domain.IngestResult, 0, len(sources))
	var errs []error

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := s.Ingest(ctx, scopeID, source, force)
		if err != nil {
			logger.Warn("Ingest %s failed: %v", source.ID, err)
			errs = append(errs, fmt.Errorf("ingest %s: %w", source.ID, err))
			continue
		}
		results = append(results, *result)
	}

	return results, errors.Join(errs...)
}

// Status reports the records and markers stored for a scope.
// A scope that was never created is reported with Exists false.
func (s *IngestionService) Status(ctx context.Context, scopeID string) (*domain.ScopeStatus, error) {
	if err := domain.ValidateScopeID(scopeID); err != nil {
		return nil, err
	}
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}

	status := &domain.ScopeStatus{ScopeID: scopeID, Sources: []domain.IngestionMarker{}}

	n, err := s.index.Count(ctx, scopeID)
	switch {
	case errors.Is(err, domain.ErrScopeNotFound):
	case err != nil:
		return nil, vectorStoreErr("count", err)
	default:
		status.Exists = true
		status.Records = n
	}

	if s.tracker != nil {
		markers, err := s.tracker.List(ctx, scopeID)
		if err != nil {
			return nil, fmt.Errorf("list ingestion markers: %w", err)
		}
		if markers != nil {
			status.Sources = markers
		}
	}

	return status, nil
}

// Forget clears the marker for a source. Stored records are kept; the next
// ingestion overwrites them in place.
func (s *IngestionService) Forget(ctx context.Context, scopeID, sourceID string) error {
	if err := domain.ValidateScopeID(scopeID); err != nil {
		return err
	}
	if sourceID == "" {
		return fmt.Errorf("%w: source id is required", domain.ErrInvalidInput)
	}
	if s.tracker == nil {
		return nil
	}

	unlock := s.lock(scopeID, sourceID)
	defer unlock()

	if err := s.tracker.Clear(ctx, scopeID, sourceID); err != nil {
		return fmt.Errorf("clear ingestion marker: %w", err)
	}
	logger.Info("Cleared marker for %s/%s", scopeID, sourceID)
	return nil
}

// embed generates one record per chunk.
func (s *IngestionService) embed(ctx context.Context, chunks []domain.TranscriptChunk) ([]domain.EmbeddingRecord, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, embeddingErr(err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(vectors), len(chunks))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: empty vector", domain.ErrEmbedding)
	}
	records := make([]domain.EmbeddingRecord, len(chunks))
	for i, c := range chunks {
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("%w: %w: chunk %d has %d dimensions, want %d",
				domain.ErrEmbedding, domain.ErrDimensionMismatch, i, len(vectors[i]), dim)
		}
		records[i] = domain.NewEmbeddingRecord(c, vectors[i])
	}
	return records, nil
}

// lock serialises work on one (scope, source) pair and returns the unlock func.
func (s *IngestionService) lock(scopeID, sourceID string) func() {
	key := scopeID + "\x00" + sourceID

	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// embeddingErr tags err as an embedding failure unless it already is one.
func embeddingErr(err error) error {
	if errors.Is(err, domain.ErrEmbedding) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
}

// vectorStoreErr tags err as a vector store failure unless it already is one.
func vectorStoreErr(op string, err error) error {
	if errors.Is(err, domain.ErrVectorStore) || errors.Is(err, domain.ErrScopeNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrVectorStore, err)
}
