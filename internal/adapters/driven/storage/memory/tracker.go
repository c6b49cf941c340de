package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// Ensure IngestionTracker implements the interface.
var _ driven.IngestionTracker = (*IngestionTracker)(nil)

type markerKey struct {
	scopeID  string
	sourceID string
}

// IngestionTracker is an in-memory implementation of driven.IngestionTracker.
// Markers do not survive the process.
type IngestionTracker struct {
	mu      sync.RWMutex
	markers map[markerKey]time.Time
	now     func() time.Time
}

// NewIngestionTracker creates a new in-memory ingestion tracker.
func NewIngestionTracker() *IngestionTracker {
	return &IngestionTracker{
		markers: make(map[markerKey]time.Time),
		now:     time.Now,
	}
}

// HasIngested reports whether a marker exists.
func (t *IngestionTracker) HasIngested(_ context.Context, scopeID, sourceID string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.markers[markerKey{scopeID, sourceID}]
	return ok, nil
}

// MarkIngested records a marker.
func (t *IngestionTracker) MarkIngested(_ context.Context, scopeID, sourceID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.markers[markerKey{scopeID, sourceID}] = t.now()
	return nil
}

// Clear removes a marker.
func (t *IngestionTracker) Clear(_ context.Context, scopeID, sourceID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.markers, markerKey{scopeID, sourceID})
	return nil
}

// List returns the markers for a scope, ordered by source ID.
func (t *IngestionTracker) List(_ context.Context, scopeID string) ([]domain.IngestionMarker, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]domain.IngestionMarker, 0)
	for k, at := range t.markers {
		if k.scopeID == scopeID {
			result = append(result, domain.IngestionMarker{ScopeID: k.scopeID, SourceID: k.sourceID, CompletedAt: at})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SourceID < result[j].SourceID })
	return result, nil
}
