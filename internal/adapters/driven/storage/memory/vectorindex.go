package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/quizrag/internal/adapters/driven/vector"
	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type memoryScope struct {
	config  domain.ScopeConfig
	records map[uint64]domain.EmbeddingRecord
}

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Search is an exact cosine scan over the scope.
type VectorIndex struct {
	mu     sync.RWMutex
	scopes map[string]*memoryScope
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		scopes: make(map[string]*memoryScope),
	}
}

// EnsureScope creates the scope if absent.
// An existing scope with a different dimension is an error.
func (v *VectorIndex) EnsureScope(_ context.Context, scopeID string, cfg domain.ScopeConfig) error {
	if cfg.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}
	if cfg.Metric == "" {
		cfg.Metric = domain.MetricCosine
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.scopes[scopeID]; ok {
		if s.config.Dimension != cfg.Dimension {
			return fmt.Errorf("%w: %w: scope %s has dimension %d, not %d",
				domain.ErrVectorStore, domain.ErrDimensionMismatch, scopeID, s.config.Dimension, cfg.Dimension)
		}
		return nil
	}
	v.scopes[scopeID] = &memoryScope{config: cfg, records: make(map[uint64]domain.EmbeddingRecord)}
	return nil
}

// Upsert inserts or overwrites records by ID.
func (v *VectorIndex) Upsert(_ context.Context, scopeID string, records []domain.EmbeddingRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.scopes[scopeID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrScopeNotFound, scopeID)
	}
	for _, r := range records {
		if len(r.Vector) != s.config.Dimension {
			return fmt.Errorf("%w: %w: record %d has dimension %d, not %d",
				domain.ErrVectorStore, domain.ErrDimensionMismatch, r.ID, len(r.Vector), s.config.Dimension)
		}
	}
	for _, r := range records {
		vec := make([]float32, len(r.Vector))
		copy(vec, r.Vector)
		r.Vector = vec
		s.records[r.ID] = r
	}
	return nil
}

// Search returns the topK most similar records.
func (v *VectorIndex) Search(_ context.Context, scopeID string, query []float32, topK int) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s, ok := v.scopes[scopeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrScopeNotFound, scopeID)
	}
	if len(query) != s.config.Dimension {
		return nil, fmt.Errorf("%w: %w: query has dimension %d, not %d",
			domain.ErrVectorStore, domain.ErrDimensionMismatch, len(query), s.config.Dimension)
	}

	hits := make([]driven.VectorHit, 0, len(s.records))
	for id, r := range s.records {
		score, err := vector.Cosine(query, r.Vector)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrVectorStore, err)
		}
		hits = append(hits, driven.VectorHit{ID: id, Payload: r.Payload, Score: score})
	}
	return vector.RankHits(hits, topK), nil
}

// TrimSource deletes the records of sourceID at sequence index keep or higher.
func (v *VectorIndex) TrimSource(_ context.Context, scopeID, sourceID string, keep int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	s, ok := v.scopes[scopeID]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrScopeNotFound, scopeID)
	}
	for id, r := range s.records {
		if r.Payload.SourceID == sourceID && r.Payload.SequenceIndex >= keep {
			delete(s.records, id)
		}
	}
	return nil
}

// Count returns the number of records in a scope.
func (v *VectorIndex) Count(_ context.Context, scopeID string) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s, ok := v.scopes[scopeID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrScopeNotFound, scopeID)
	}
	return len(s.records), nil
}

// Close releases resources (no-op for memory index).
func (v *VectorIndex) Close() error {
	return nil
}
