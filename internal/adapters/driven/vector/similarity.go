package vector

import (
	"errors"
	"math"
	"sort"

	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// ErrLengthMismatch indicates two vectors of different lengths were compared.
var ErrLengthMismatch = errors.New("vector length mismatch")

// Cosine computes cosine similarity between two vectors of equal length.
// A zero vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrLengthMismatch
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0, nil
	}
	return dot / den, nil
}

// NormalizeL2 returns a copy of v scaled to unit L2 norm.
// A zero vector is returned unchanged.
func NormalizeL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	copy(out, v)
	n := math.Sqrt(sum)
	if n == 0 {
		return out
	}
	inv := float32(1.0 / n)
	for i := range out {
		out[i] *= inv
	}
	return out
}

// RankHits sorts hits by descending score, breaking ties by ascending point
// id so equal scores rank deterministically, and keeps the first topK.
func RankHits(hits []driven.VectorHit, topK int) []driven.VectorHit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
