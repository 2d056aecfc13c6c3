package embedding

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecode_Float32(t *testing.T) {
	raw := encodeNPY(t, "<f4", false, 2, 3, []float32{1, 2, 3, 4, 5, 6})

	m, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Rows() != 2 || m.Dim() != 3 {
		t.Fatalf("shape = %dx%d", m.Rows(), m.Dim())
	}
	if row := m.Row(1); row[0] != 4 || row[2] != 6 {
		t.Errorf("row 1 = %v", row)
	}
}

func TestDecode_Float64(t *testing.T) {
	raw := encodeNPY(t, "<f8", false, 1, 2, []float64{0.5, -1.5})

	m, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row := m.Row(0); row[0] != 0.5 || row[1] != -1.5 {
		t.Errorf("row 0 = %v", row)
	}
}

func TestDecode_FortranOrder(t *testing.T) {
	// 2x3 matrix [[1,2,3],[4,5,6]] stored column-major.
	raw := encodeNPY(t, "<f4", true, 2, 3, []float32{1, 4, 2, 5, 3, 6})

	m, err := Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]float32{{1, 2, 3}, {4, 5, 6}}
	for i := range want {
		for j := range want[i] {
			if got := m.Row(i)[j]; got != want[i][j] {
				t.Errorf("m[%d][%d] = %v, want %v", i, j, got, want[i][j])
			}
		}
	}
}

func TestDecode_Empty(t *testing.T) {
	raw := encodeNPY(t, "<f4", false, 0, 384, []float32{})

	_, err := Decode(bytes.NewReader(raw))
	if !errors.Is(err, errEmptyMatrix) {
		t.Fatalf("expected errEmptyMatrix, got %v", err)
	}
}

func TestDecode_UnsupportedDtype(t *testing.T) {
	raw := encodeNPY(t, "<i4", false, 1, 2, []int32{1, 2})

	if _, err := Decode(bytes.NewReader(raw)); err == nil {
		t.Fatal("expected dtype error")
	}
}

func TestDecode_NotNPY(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("title,synopsis\n"))); err == nil {
		t.Fatal("expected header error")
	}
}
