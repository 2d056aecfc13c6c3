package result

// Result is one ranked catalogue entry.
type Result struct {
	rank       int
	name       string
	synopsis   string
	similarity float64
	column     string
	row        int
}

// New creates a ranked result.
func New(rank int, name, synopsis string, similarity float64, column string, row int) Result {
	return Result{
		rank: rank, name: name, synopsis: synopsis,
		similarity: similarity, column: column, row: row,
	}
}

// Rank returns the 1-based position in the ranking.
func (r *Result) Rank() int { return r.rank }

// Name returns the catalogue title.
func (r *Result) Name() string { return r.name }

// Synopsis returns the synopsis text of the column that matched.
func (r *Result) Synopsis() string { return r.synopsis }

// Similarity returns the cosine similarity of the matching column.
func (r *Result) Similarity() float64 { return r.similarity }

// Column returns the synopsis column that produced the match.
func (r *Result) Column() string { return r.column }

// Row returns the catalogue row index.
func (r *Result) Row() int { return r.row }
