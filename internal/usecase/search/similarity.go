package search

import (
	"math"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/domain/vector"
)

// Cosine returns dot(a,b)/(|a|·|b|) in float64.
// Vectors of different length, empty vectors, zero vectors and vectors with
// non-finite components have similarity 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return cosineFromDot(dot, vector.Norm(a), vector.Norm(b))
}

// Score computes the cosine similarity of query against every row of m.
// The result is index-aligned with the matrix rows. Zero rows score 0.
func Score(column string, query []float32, m *vector.Matrix) ([]float64, error) {
	if len(query) != m.Dim() {
		return nil, domain.NewDimensionMismatch(column, len(query), m.Dim())
	}

	qNorm := vector.Norm(query)
	out := make([]float64, m.Rows())
	if qNorm == 0 {
		return out, nil
	}

	for i := 0; i < m.Rows(); i++ {
		row := m.Row(i)
		var dot float64
		for j, q := range query {
			dot += float64(q) * float64(row[j])
		}
		out[i] = cosineFromDot(dot, qNorm, m.RowNorm(i))
	}
	return out, nil
}

func cosineFromDot(dot, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (na * nb)
	// NaN or Inf components make the pair incomparable; score them like a zero vector.
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	// rounding can push |s| marginally past 1
	return math.Max(-1, math.Min(1, s))
}
