package domain

import "time"

// IngestionMarker records that a source was embedded and stored in a scope.
// Its presence is the only idempotency signal; absence means "must (re)ingest".
type IngestionMarker struct {
	ScopeID     string    `json:"scope_id"`
	SourceID    string    `json:"source_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// IngestResult summarises one ingestion run for a source.
type IngestResult struct {
	ScopeID  string `json:"scope_id"`
	SourceID string `json:"source_id"`

	// Chunks is the number of chunks embedded and upserted.
	Chunks int `json:"chunks"`

	// Skipped is true when a marker already existed and no work was done.
	Skipped bool `json:"skipped"`
}

// ScopeStatus describes what is stored for a scope.
type ScopeStatus struct {
	ScopeID string `json:"scope_id"`

	// Exists is false when nothing was ever ingested into the scope.
	Exists bool `json:"exists"`

	// Records is the number of stored embedding records.
	Records int `json:"records"`

	// Sources lists the ingestion markers recorded for the scope.
	Sources []IngestionMarker `json:"sources"`
}
