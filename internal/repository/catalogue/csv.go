package catalogue

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// readCSV parses a header-first CSV table as written by pandas.to_csv.
func readCSV(r io.Reader, titleColumn string, columns []string) (*tableBuilder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)

	b, err := newTableBuilder(header, titleColumn, columns)
	if err != nil {
		return nil, err
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", line, err)
		}
		b.add(rec)
	}
	return b, nil
}
