package catalogue

import (
	"strings"
	"testing"
)

func TestDomain_IsValid(t *testing.T) {
	tests := []struct {
		d    Domain
		want bool
	}{
		{Anime, true},
		{Manga, true},
		{"light_novel", true},
		{"", false},
		{"Anime", false},
		{"../etc", false},
		{Domain(strings.Repeat("a", 65)), false},
	}
	for _, tc := range tests {
		if got := tc.d.IsValid(); got != tc.want {
			t.Errorf("Domain(%q).IsValid() = %v, want %v", tc.d, got, tc.want)
		}
	}
}

func TestNew_Valid(t *testing.T) {
	c, err := New(Manga,
		[]string{"Berserk", "Monster"},
		[]string{"synopsis", "Synopsis jikan Dataset"},
		map[string][]string{
			"synopsis":               {"a dark fantasy", "a doctor"},
			"Synopsis jikan Dataset": {"guts", ""},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if c.Domain() != Manga {
		t.Errorf("Domain() = %q", c.Domain())
	}
	if c.Title(1) != "Monster" {
		t.Errorf("Title(1) = %q", c.Title(1))
	}
	if c.Synopsis(0, "Synopsis jikan Dataset") != "guts" {
		t.Errorf("Synopsis(0) = %q", c.Synopsis(0, "Synopsis jikan Dataset"))
	}
	if c.Title(5) != "" || c.Synopsis(-1, "synopsis") != "" || c.Synopsis(0, "nope") != "" {
		t.Error("out of range lookups must return empty strings")
	}
}

func TestNew_ColumnsAreCopied(t *testing.T) {
	cols := []string{"synopsis"}
	c, err := New(Anime, []string{"x"}, cols, map[string][]string{"synopsis": {"s"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cols[0] = "mutated"
	got := c.Columns()
	if got[0] != "synopsis" {
		t.Errorf("catalogue columns changed through caller slice: %v", got)
	}
	got[0] = "mutated again"
	if c.Columns()[0] != "synopsis" {
		t.Error("Columns() must return a copy")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		domain   Domain
		columns  []string
		synopses map[string][]string
	}{
		{"bad domain", "BAD", []string{"synopsis"}, map[string][]string{"synopsis": {"a"}}},
		{"no columns", Anime, nil, map[string][]string{}},
		{"empty column name", Anime, []string{""}, map[string][]string{"": {"a"}}},
		{"duplicate column", Anime, []string{"synopsis", "synopsis"}, map[string][]string{"synopsis": {"a"}}},
		{"missing column", Anime, []string{"synopsis"}, map[string][]string{}},
		{"row mismatch", Anime, []string{"synopsis"}, map[string][]string{"synopsis": {"a", "b"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.domain, []string{"x"}, tc.columns, tc.synopses); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDefaultSynopsisColumns(t *testing.T) {
	if n := len(DefaultSynopsisColumns(Anime)); n != 10 {
		t.Errorf("anime defaults = %d columns, want 10", n)
	}
	if n := len(DefaultSynopsisColumns(Manga)); n != 3 {
		t.Errorf("manga defaults = %d columns, want 3", n)
	}
	if n := len(DefaultSynopsisColumns("novel")); n != 0 {
		t.Errorf("unknown domain defaults = %d columns, want 0", n)
	}
	if got := DefaultTableKey(Manga); got != "merged_manga_dataset.csv" {
		t.Errorf("DefaultTableKey = %q", got)
	}
}
