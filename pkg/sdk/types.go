package anisearch

// Result is one ranked catalogue entry.
type Result struct {
	Rank       int
	Name       string
	Synopsis   string
	Similarity float64
	Column     string // synopsis column the match came from
}

// ColumnReport describes one embedding file checked by Verify.
type ColumnReport struct {
	Column string
	Rows   int
	Dim    int
	Err    error
}
