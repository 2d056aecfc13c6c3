package catalogue

import (
	"fmt"
	"strings"
)

// tableBuilder keeps the title column and the configured synopsis columns of a table,
// dropping every other column as rows stream in.
type tableBuilder struct {
	titleIdx int
	columns  []string
	colIdx   []int
	titles   []string
	cells    [][]string
}

func newTableBuilder(header []string, titleColumn string, columns []string) (*tableBuilder, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	titleIdx, ok := index[titleColumn]
	if !ok {
		return nil, fmt.Errorf("title column %q not found", titleColumn)
	}

	b := &tableBuilder{
		titleIdx: titleIdx,
		columns:  columns,
		colIdx:   make([]int, len(columns)),
		cells:    make([][]string, len(columns)),
	}
	var missing []string
	for i, col := range columns {
		idx, ok := index[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		b.colIdx[i] = idx
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("synopsis columns not found: %q", missing)
	}
	return b, nil
}

// add appends one row. Short records yield empty cells.
func (b *tableBuilder) add(record []string) {
	b.titles = append(b.titles, strings.TrimSpace(cell(record, b.titleIdx)))
	for i, idx := range b.colIdx {
		b.cells[i] = append(b.cells[i], cell(record, idx))
	}
}

func (b *tableBuilder) synopses() map[string][]string {
	out := make(map[string][]string, len(b.columns))
	for i, col := range b.columns {
		out[col] = b.cells[i]
	}
	return out
}

func cell(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
