package driven

import (
	"context"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// IngestionTracker persists "this source is ingested into this scope" facts.
//
// The check-then-act window between HasIngested and MarkIngested is kept
// small but is not atomic across processes: ingestion is at-least-once.
// Duplicate work is harmless because vector writes are idempotent upserts.
type IngestionTracker interface {
	// HasIngested reports whether a marker exists for (scopeID, sourceID).
	HasIngested(ctx context.Context, scopeID, sourceID string) (bool, error)

	// MarkIngested records a marker. Marking twice is not an error.
	MarkIngested(ctx context.Context, scopeID, sourceID string) error

	// Clear removes a marker so the source is ingested again next time.
	// Clearing a missing marker is not an error.
	Clear(ctx context.Context, scopeID, sourceID string) error

	// List returns the markers recorded for a scope.
	List(ctx context.Context, scopeID string) ([]domain.IngestionMarker, error)
}
