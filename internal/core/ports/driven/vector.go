package driven

import (
	"context"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// VectorIndex stores embeddings in per-scope collections and searches them.
// Writes are idempotent upserts keyed by deterministic point ids, so no
// locking is needed between concurrent ingestions.
type VectorIndex interface {
	// EnsureScope creates the scope if absent. An existing scope is left
	// untouched, including its records and configuration.
	EnsureScope(ctx context.Context, scopeID string, cfg domain.ScopeConfig) error

	// Upsert inserts or overwrites records by ID.
	// Partial failure is returned as an error wrapping domain.ErrVectorStore.
	Upsert(ctx context.Context, scopeID string, records []domain.EmbeddingRecord) error

	// Search returns up to topK hits ordered by descending similarity.
	// An existing empty scope yields an empty slice. A scope that was never
	// created yields domain.ErrScopeNotFound.
	Search(ctx context.Context, scopeID string, query []float32, topK int) ([]VectorHit, error)

	// TrimSource deletes the records of sourceID whose sequence index is
	// keep or higher, so a shorter re-ingestion leaves no trailing chunks.
	// Deleting from a missing scope yields domain.ErrScopeNotFound.
	TrimSource(ctx context.Context, scopeID, sourceID string, keep int) error

	// Count returns the number of records stored in a scope.
	Count(ctx context.Context, scopeID string) (int, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the point id of the matched record.
	ID uint64

	// Payload is the data stored with the record.
	Payload domain.Payload

	// Score is the cosine similarity, higher is closer.
	Score float64
}
