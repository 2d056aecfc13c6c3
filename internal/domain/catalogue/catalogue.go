package catalogue

import (
	"fmt"
	"regexp"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Domain names a served catalogue (anime, manga).
type Domain string

const (
	// Anime is the anime catalogue.
	Anime Domain = "anime"
	// Manga is the manga catalogue.
	Manga Domain = "manga"
)

// IsValid reports whether the domain name is usable in routes and store keys.
func (d Domain) IsValid() bool {
	return len(d) > 0 && len(d) <= 64 && nameRegex.MatchString(string(d))
}

// Catalogue is the read-only table of one domain.
// Row i is aligned with row i of every embedding matrix stored for the domain.
type Catalogue struct {
	domain   Domain
	titles   []string
	columns  []string
	synopses map[string][]string
}

// New validates and builds a catalogue. Every synopsis column must have one cell per title.
func New(d Domain, titles, columns []string, synopses map[string][]string) (*Catalogue, error) {
	if !d.IsValid() {
		return nil, fmt.Errorf("invalid domain name %q", d)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("domain %s: at least one synopsis column is required", d)
	}

	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if col == "" {
			return nil, fmt.Errorf("domain %s: empty synopsis column name", d)
		}
		if seen[col] {
			return nil, fmt.Errorf("domain %s: duplicate synopsis column %q", d, col)
		}
		seen[col] = true

		cells, ok := synopses[col]
		if !ok {
			return nil, fmt.Errorf("domain %s: missing synopsis column %q", d, col)
		}
		if len(cells) != len(titles) {
			return nil, fmt.Errorf("domain %s: column %q has %d rows, expected %d",
				d, col, len(cells), len(titles))
		}
	}

	cols := make([]string, len(columns))
	copy(cols, columns)

	return &Catalogue{
		domain:   d,
		titles:   titles,
		columns:  cols,
		synopses: synopses,
	}, nil
}

// Domain returns the catalogue domain.
func (c *Catalogue) Domain() Domain { return c.domain }

// Len returns the number of rows.
func (c *Catalogue) Len() int { return len(c.titles) }

// Columns returns the ordered synopsis column set.
func (c *Catalogue) Columns() []string {
	out := make([]string, len(c.columns))
	copy(out, c.columns)
	return out
}

// Title returns the title of a row, or "" when the row is out of range.
func (c *Catalogue) Title(row int) string {
	if row < 0 || row >= len(c.titles) {
		return ""
	}
	return c.titles[row]
}

// Synopsis returns the synopsis cell of a row in the given column.
func (c *Catalogue) Synopsis(row int, column string) string {
	cells := c.synopses[column]
	if row < 0 || row >= len(cells) {
		return ""
	}
	return cells[row]
}
