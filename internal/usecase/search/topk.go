package search

import (
	"math"
	"sort"

	"github.com/kailas-cloud/anisearch/internal/domain"
	"github.com/kailas-cloud/anisearch/internal/domain/search/result"
)

// ColumnScores is the per-row similarity vector of one synopsis column.
type ColumnScores struct {
	Column string
	Scores []float64
}

// Rows resolves catalogue cells for ranked candidates.
type Rows interface {
	Title(row int) string
	Synopsis(row int, column string) string
}

type candidate struct {
	row    int
	column int
	score  float64
}

// TopK merges per-column similarity vectors into at most k results with distinct titles.
//
// Every column contributes its own top-k rows (ties by lower row index), the candidates are
// concatenated in column order and stably sorted by score, so on equal scores the earlier
// column wins. Walking that order, the first occurrence of a title is emitted and later
// ones are skipped without counting toward k.
//
// Recall is bounded, not exact: a title whose best score is ranked below k inside its own
// column never becomes a candidate, even if it would beat the k-th emitted result after
// deduplication removed other entries.
func TopK(columns []ColumnScores, rows Rows, k int) []result.Result {
	if k <= 0 {
		k = domain.DefaultTopK
	}

	candidates := make([]candidate, 0, len(columns)*k)
	for ci, col := range columns {
		for _, row := range columnTopK(col.Scores, k) {
			candidates = append(candidates, candidate{row: row, column: ci, score: col.Scores[row]})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return scoreGreater(candidates[i].score, candidates[j].score)
	})

	results := make([]result.Result, 0, k)
	seen := make(map[string]struct{}, k)
	for _, c := range candidates {
		if len(results) >= k {
			break
		}
		title := rows.Title(c.row)
		if title == "" {
			continue
		}
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}

		column := columns[c.column].Column
		results = append(results, result.New(
			len(results)+1, title, rows.Synopsis(c.row, column), c.score, column, c.row,
		))
	}
	return results
}

// columnTopK returns the indices of the k highest scores, highest first,
// ties broken by ascending index. Shorter vectors yield all their indices.
func columnTopK(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scoreGreater(scores[idx[i]], scores[idx[j]])
	})
	if len(idx) > k {
		idx = idx[:k]
	}
	return idx
}

// scoreGreater orders scores descending with NaN after every number.
func scoreGreater(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a > b
}
