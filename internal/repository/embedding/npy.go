package embedding

import (
	"errors"
	"fmt"
	"io"

	"github.com/sbinet/npyio/npy"

	"github.com/kailas-cloud/anisearch/internal/domain/vector"
)

var errEmptyMatrix = errors.New("empty embedding matrix")

// Decode reads a 2-D float32 or float64 NumPy array into a matrix.
// Fortran-ordered arrays are transposed into row-major order.
func Decode(r io.Reader) (*vector.Matrix, error) {
	nr, err := npy.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read npy header: %w", err)
	}

	shape := nr.Header.Descr.Shape
	if len(shape) != 2 {
		if len(shape) == 1 && shape[0] == 0 {
			return nil, errEmptyMatrix
		}
		return nil, fmt.Errorf("expected a 2-D array, got shape %v", shape)
	}
	rows, dim := shape[0], shape[1]
	if rows == 0 || dim == 0 {
		return nil, errEmptyMatrix
	}

	var data []float32
	switch nr.Header.Descr.Type {
	case "<f4", "|f4", "f4":
		data = make([]float32, rows*dim)
		if err = nr.Read(&data); err != nil {
			return nil, fmt.Errorf("read float32 data: %w", err)
		}
	case "<f8", "|f8", "f8":
		wide := make([]float64, rows*dim)
		if err = nr.Read(&wide); err != nil {
			return nil, fmt.Errorf("read float64 data: %w", err)
		}
		data = make([]float32, len(wide))
		for i, v := range wide {
			data[i] = float32(v)
		}
	default:
		return nil, fmt.Errorf("unsupported dtype %q", nr.Header.Descr.Type)
	}

	if nr.Header.Descr.Fortran {
		data = transpose(data, rows, dim)
	}

	m, err := vector.NewMatrix(rows, dim, data)
	if err != nil {
		return nil, fmt.Errorf("build matrix: %w", err)
	}
	return m, nil
}

// transpose converts column-major data of a rows×dim array to row-major.
func transpose(colMajor []float32, rows, dim int) []float32 {
	out := make([]float32, len(colMajor))
	for j := 0; j < dim; j++ {
		for i := 0; i < rows; i++ {
			out[i*dim+j] = colMajor[j*rows+i]
		}
	}
	return out
}
