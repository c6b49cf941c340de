package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

func record(scope, source string, index int, text string, vec ...float32) domain.EmbeddingRecord {
	return domain.NewEmbeddingRecord(domain.TranscriptChunk{
		ScopeID: scope, SourceID: source, SequenceIndex: index, Text: text,
	}, vec)
}

func cosineScope() domain.ScopeConfig {
	return domain.ScopeConfig{Dimension: 2, Metric: domain.MetricCosine}
}

func TestVectorIndex_SearchNeverCreatedScope(t *testing.T) {
	idx := NewVectorIndex()

	_, err := idx.Search(context.Background(), "course_none", []float32{1, 0}, 3)

	assert.ErrorIs(t, err, domain.ErrScopeNotFound)
}

func TestVectorIndex_SearchEmptyScope(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureScope(ctx, "course_demo", cosineScope()))

	hits, err := idx.Search(ctx, "course_demo", []float32{1, 0}, 3)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestVectorIndex_EnsureScopeKeepsRecords(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, idx.EnsureScope(ctx, "s", cosineScope()))
	require.NoError(t, idx.Upsert(ctx, "s", []domain.EmbeddingRecord{record("s", "a", 0, "x", 1, 0)}))
	require.NoError(t, idx.EnsureScope(ctx, "s", cosineScope()))

	n, err := idx.Count(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestVectorIndex_EnsureScopeDimensionMismatch(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, idx.EnsureScope(ctx, "s", cosineScope()))
	err := idx.EnsureScope(ctx, "s", domain.ScopeConfig{Dimension: 3})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.ErrorIs(t, err, domain.ErrVectorStore)
}

func TestVectorIndex_UpsertIsIdempotent(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureScope(ctx, "s", cosineScope()))

	records := []domain.EmbeddingRecord{
		record("s", "a", 0, "first", 1, 0),
		record("s", "a", 1, "second", 0, 1),
	}
	require.NoError(t, idx.Upsert(ctx, "s", records))
	require.NoError(t, idx.Upsert(ctx, "s", records))

	n, err := idx.Count(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Overwrite, not append.
	require.NoError(t, idx.Upsert(ctx, "s", []domain.EmbeddingRecord{record("s", "a", 0, "changed", 1, 0)}))
	n, err = idx.Count(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hits, err := idx.Search(ctx, "s", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "changed", hits[0].Payload.Text)
}

func TestVectorIndex_SearchRanksBySimilarity(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureScope(ctx, "s", cosineScope()))
	require.NoError(t, idx.Upsert(ctx, "s", []domain.EmbeddingRecord{
		record("s", "a", 0, "far", -1, 0),
		record("s", "a", 1, "close", 1, 0.1),
		record("s", "a", 2, "middle", 0.5, 0.5),
	}))

	hits, err := idx.Search(ctx, "s", []float32{1, 0}, 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "close", hits[0].Payload.Text)
	assert.Equal(t, "middle", hits[1].Payload.Text)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestVectorIndex_UpsertDimensionMismatch(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureScope(ctx, "s", cosineScope()))

	err := idx.Upsert(ctx, "s", []domain.EmbeddingRecord{record("s", "a", 0, "x", 1, 0, 0)})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorIndex_UpsertUnknownScope(t *testing.T) {
	err := NewVectorIndex().Upsert(context.Background(), "s", []domain.EmbeddingRecord{record("s", "a", 0, "x", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrScopeNotFound)
}

func TestVectorIndex_TrimSource(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, idx.EnsureScope(ctx, "course_demo", cosineScope()))
	require.NoError(t, idx.Upsert(ctx, "course_demo", []domain.EmbeddingRecord{
		record("course_demo", "a", 0, "a0", 1, 0),
		record("course_demo", "a", 1, "a1", 0, 1),
		record("course_demo", "a", 2, "a2", 1, 1),
		record("course_demo", "b", 2, "b2", 1, 0),
	}))

	require.NoError(t, idx.TrimSource(ctx, "course_demo", "a", 1))

	n, err := idx.Count(ctx, "course_demo")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hits, err := idx.Search(ctx, "course_demo", []float32{0, 1}, 10)
	require.NoError(t, err)
	for _, h := range hits {
		assert.False(t, h.Payload.SourceID == "a" && h.Payload.SequenceIndex >= 1)
	}

	assert.ErrorIs(t, idx.TrimSource(ctx, "course_none", "a", 0), domain.ErrScopeNotFound)
}
