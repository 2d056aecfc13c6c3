package vector

import (
	"fmt"
	"math"
)

// Matrix is a dense row-major N×D embedding matrix with precomputed row norms.
// It is immutable after construction and safe for concurrent readers.
type Matrix struct {
	rows  int
	dim   int
	data  []float32
	norms []float64
}

// NewMatrix wraps row-major data. len(data) must equal rows*dim.
func NewMatrix(rows, dim int, data []float32) (*Matrix, error) {
	if rows < 0 || dim < 0 {
		return nil, fmt.Errorf("invalid matrix shape %dx%d", rows, dim)
	}
	if len(data) != rows*dim {
		return nil, fmt.Errorf("matrix data has %d values, expected %d (%dx%d)",
			len(data), rows*dim, rows, dim)
	}

	norms := make([]float64, rows)
	for i := 0; i < rows; i++ {
		norms[i] = Norm(data[i*dim : (i+1)*dim])
	}

	return &Matrix{rows: rows, dim: dim, data: data, norms: norms}, nil
}

// FromRows builds a matrix from equal-length rows (copies the values).
func FromRows(rows [][]float32) (*Matrix, error) {
	if len(rows) == 0 {
		return NewMatrix(0, 0, nil)
	}
	dim := len(rows[0])
	data := make([]float32, 0, len(rows)*dim)
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(r), dim)
		}
		data = append(data, r...)
	}
	return NewMatrix(len(rows), dim, data)
}

// Rows returns N.
func (m *Matrix) Rows() int { return m.rows }

// Dim returns D.
func (m *Matrix) Dim() int { return m.dim }

// Row returns a read-only view of row i.
func (m *Matrix) Row(i int) []float32 { return m.data[i*m.dim : (i+1)*m.dim] }

// RowNorm returns the Euclidean norm of row i.
func (m *Matrix) RowNorm(i int) float64 { return m.norms[i] }

// SizeBytes approximates the heap held by the matrix.
func (m *Matrix) SizeBytes() int64 {
	return int64(len(m.data))*4 + int64(len(m.norms))*8
}

// Norm returns the Euclidean norm of v computed in float64.
func Norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		f := float64(x)
		s += f * f
	}
	return math.Sqrt(s)
}

// Finite reports whether every component of v is a finite number.
func Finite(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
