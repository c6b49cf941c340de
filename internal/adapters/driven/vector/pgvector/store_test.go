package pgvector

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

// testDSNEnv names the database used by the integration tests.
const testDSNEnv = "QUIZRAG_TEST_PGVECTOR_DSN"

func TestVectorLiteral(t *testing.T) {
	tests := []struct {
		name string
		in   []float32
		want string
	}{
		{name: "empty", in: nil, want: "[]"},
		{name: "integers", in: []float32{1, 0, -2}, want: "[1,0,-2]"},
		{name: "fractions", in: []float32{0.5, 0.25}, want: "[0.5,0.25]"},
		{name: "shortest float32 form", in: []float32{0.1}, want: "[0.1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vectorLiteral(tt.in))
		})
	}
}

func TestDistanceToScore(t *testing.T) {
	assert.InDelta(t, 1.0, distanceToScore(0), 1e-9)
	assert.InDelta(t, 0.0, distanceToScore(1), 1e-9)
	assert.InDelta(t, -1.0, distanceToScore(2), 1e-9)
	assert.InDelta(t, -1.0, distanceToScore(2.5), 1e-9)
	assert.InDelta(t, 1.0, distanceToScore(-0.1), 1e-9)
}

func TestNewVectorIndex_RequiresDSN(t *testing.T) {
	_, err := NewVectorIndex(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorIndex_Integration(t *testing.T) {
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}
	ctx := context.Background()

	idx, err := NewVectorIndex(ctx, Config{DSN: dsn, TablePrefix: "quizrag_test"})
	require.NoError(t, err)
	defer idx.Close()

	scope := "course_" + uuid.NewString()[:8]

	_, err = idx.Search(ctx, scope, []float32{1, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrScopeNotFound)

	require.NoError(t, idx.EnsureScope(ctx, scope, domain.ScopeConfig{Dimension: 2}))
	require.NoError(t, idx.EnsureScope(ctx, scope, domain.ScopeConfig{Dimension: 2}))
	assert.ErrorIs(t, idx.EnsureScope(ctx, scope, domain.ScopeConfig{Dimension: 3}), domain.ErrDimensionMismatch)

	chunk := func(i int) domain.TranscriptChunk {
		return domain.TranscriptChunk{ScopeID: scope, SourceID: "lec1", SequenceIndex: i, Text: "chunk"}
	}
	require.NoError(t, idx.Upsert(ctx, scope, []domain.EmbeddingRecord{
		domain.NewEmbeddingRecord(chunk(0), []float32{1, 0}),
		domain.NewEmbeddingRecord(chunk(1), []float32{0, 1}),
	}))
	require.NoError(t, idx.Upsert(ctx, scope, []domain.EmbeddingRecord{
		domain.NewEmbeddingRecord(chunk(0), []float32{1, 0}),
	}))

	n, err := idx.Count(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hits, err := idx.Search(ctx, scope, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, domain.PointID(scope, "lec1", 0), hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "lec1", hits[0].Payload.SourceID)

	require.NoError(t, idx.TrimSource(ctx, scope, "lec1", 1))
	n, err = idx.Count(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
