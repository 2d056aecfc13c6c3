package catalogue

import (
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// readParquet reads a flat parquet table; every top-level column is read as text
// and nulls become empty cells.
func readParquet(r io.ReaderAt, size int64, titleColumn string, columns []string) (*tableBuilder, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	leaves := pf.Schema().Columns()
	header := make([]string, len(leaves))
	for i, path := range leaves {
		if len(path) > 0 {
			header[i] = path[0]
		}
	}

	b, err := newTableBuilder(header, titleColumn, columns)
	if err != nil {
		return nil, err
	}

	record := make([]string, len(header))
	buf := make([]parquet.Row, 256)
	for _, rg := range pf.RowGroups() {
		if err := readRowGroup(rg, buf, record, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func readRowGroup(rg parquet.RowGroup, buf []parquet.Row, record []string, b *tableBuilder) error {
	rows := parquet.NewRowGroupReader(rg)
	for {
		n, readErr := rows.ReadRows(buf)
		for i := 0; i < n; i++ {
			clear(record)
			for _, v := range buf[i] {
				col := v.Column()
				if col < 0 || col >= len(record) || v.IsNull() {
					continue
				}
				record[col] = v.String()
			}
			b.add(record)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read rows: %w", readErr)
		}
	}
}
