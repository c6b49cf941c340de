package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/quizrag/internal/adapters/driven/vector"
	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex over the vector_scopes and
// vector_points tables. Search is an exact cosine scan of the scope.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// EnsureScope creates the scope if absent.
// An existing scope with a different dimension is an error.
func (v *vectorIndex) EnsureScope(ctx context.Context, scopeID string, cfg domain.ScopeConfig) error {
	if cfg.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive", domain.ErrInvalidInput)
	}
	if cfg.Metric == "" {
		cfg.Metric = domain.MetricCosine
	}

	_, err := v.store.db.ExecContext(ctx, `
		INSERT INTO vector_scopes (scope_id, dimension, metric, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(scope_id) DO NOTHING
	`, scopeID, cfg.Dimension, string(cfg.Metric), v.store.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: creating scope: %w", domain.ErrVectorStore, err)
	}

	dim, err := v.dimension(ctx, v.store.db, scopeID)
	if err != nil {
		return err
	}
	if dim != cfg.Dimension {
		return fmt.Errorf("%w: %w: scope %s has dimension %d, not %d",
			domain.ErrVectorStore, domain.ErrDimensionMismatch, scopeID, dim, cfg.Dimension)
	}
	return nil
}

// Upsert inserts or overwrites records by ID in a single transaction.
func (v *vectorIndex) Upsert(ctx context.Context, scopeID string, records []domain.EmbeddingRecord) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %w", domain.ErrVectorStore, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	dim, err := v.dimension(ctx, tx, scopeID)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_points (scope_id, point_id, vector, text, source_id, sequence_index)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(scope_id, point_id) DO UPDATE SET
			vector = excluded.vector,
			text = excluded.text,
			source_id = excluded.source_id,
			sequence_index = excluded.sequence_index
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing upsert: %w", domain.ErrVectorStore, err)
	}
	defer stmt.Close()

	for _, r := range records {
		if len(r.Vector) != dim {
			return fmt.Errorf("%w: %w: record %d has dimension %d, not %d",
				domain.ErrVectorStore, domain.ErrDimensionMismatch, r.ID, len(r.Vector), dim)
		}
		if _, err := stmt.ExecContext(ctx, scopeID, int64(r.ID), float32SliceToBytes(r.Vector),
			r.Payload.Text, r.Payload.SourceID, r.Payload.SequenceIndex); err != nil {
			return fmt.Errorf("%w: upserting point %d: %w", domain.ErrVectorStore, r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing upsert: %w", domain.ErrVectorStore, err)
	}
	return nil
}

// Search returns the topK most similar records.
func (v *vectorIndex) Search(ctx context.Context, scopeID string, query []float32, topK int) ([]driven.VectorHit, error) {
	dim, err := v.dimension(ctx, v.store.db, scopeID)
	if err != nil {
		return nil, err
	}
	if len(query) != dim {
		return nil, fmt.Errorf("%w: %w: query has dimension %d, not %d",
			domain.ErrVectorStore, domain.ErrDimensionMismatch, len(query), dim)
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT point_id, vector, text, source_id, sequence_index
		FROM vector_points WHERE scope_id = ?
	`, scopeID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying points: %w", domain.ErrVectorStore, err)
	}
	defer rows.Close()

	hits := make([]driven.VectorHit, 0)
	for rows.Next() {
		var (
			id   int64
			blob []byte
			hit  driven.VectorHit
		)
		if err := rows.Scan(&id, &blob, &hit.Payload.Text, &hit.Payload.SourceID,
			&hit.Payload.SequenceIndex); err != nil {
			return nil, fmt.Errorf("%w: scanning point: %w", domain.ErrVectorStore, err)
		}
		score, err := vector.Cosine(query, bytesToFloat32Slice(blob))
		if err != nil {
			return nil, fmt.Errorf("%w: point %d: %w", domain.ErrVectorStore, id, err)
		}
		hit.ID = uint64(id)
		hit.Payload.ScopeID = scopeID
		hit.Score = score
		hits = append(hits, hit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating points: %w", domain.ErrVectorStore, err)
	}

	return vector.RankHits(hits, topK), nil
}

// TrimSource deletes the records of sourceID at sequence index keep or higher.
func (v *vectorIndex) TrimSource(ctx context.Context, scopeID, sourceID string, keep int) error {
	if _, err := v.dimension(ctx, v.store.db, scopeID); err != nil {
		return err
	}
	if _, err := v.store.db.ExecContext(ctx, `
		DELETE FROM vector_points
		WHERE scope_id = ? AND source_id = ? AND sequence_index >= ?
	`, scopeID, sourceID, keep); err != nil {
		return fmt.Errorf("%w: trimming points: %w", domain.ErrVectorStore, err)
	}
	return nil
}

// Count returns the number of records in a scope.
func (v *vectorIndex) Count(ctx context.Context, scopeID string) (int, error) {
	if _, err := v.dimension(ctx, v.store.db, scopeID); err != nil {
		return 0, err
	}
	var n int
	if err := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vector_points WHERE scope_id = ?", scopeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting points: %w", domain.ErrVectorStore, err)
	}
	return n, nil
}

// Close is a no-op; the owning Store holds the connection.
func (v *vectorIndex) Close() error {
	return nil
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dimension returns the dimension of an existing scope.
func (v *vectorIndex) dimension(ctx context.Context, q queryRower, scopeID string) (int, error) {
	var dim int
	err := q.QueryRowContext(ctx,
		"SELECT dimension FROM vector_scopes WHERE scope_id = ?", scopeID).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", domain.ErrScopeNotFound, scopeID)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: reading scope: %w", domain.ErrVectorStore, err)
	}
	return dim, nil
}
