package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/anisearch/internal/usecase/search"
)

func sampleResults() []result.Result {
	return []result.Result{
		result.New(1, "Mushishi", "a wanderer studies strange\nlife forms", 0.8731, "synopsis", 4),
		result.New(2, "Natsume's Book of Friends", "a boy who sees spirits", 0.81, "Synopsis anime_dataset_2023", 9),
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	if err := printTable(&buf, sampleResults(), true); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"RANK", "0.8731", "Mushishi", "Natsume's Book of Friends", "strange life forms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := printTable(&buf, nil, false); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "No results." {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := printJSON(&buf, sampleResults()); err != nil {
		t.Fatal(err)
	}
	var got []jsonResult
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Mushishi" || got[1].Column != "Synopsis anime_dataset_2023" {
		t.Errorf("unexpected results: %+v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("ab  cd\tef", 100); got != "ab cd ef" {
		t.Errorf("whitespace not collapsed: %q", got)
	}
	if got := truncate("ぁあぃいぅう", 4); got != "ぁあぃ…" {
		t.Errorf("rune truncate = %q", got)
	}
}

func TestPrintReports(t *testing.T) {
	var buf bytes.Buffer
	printReports(&buf, catalogue.Manga, "m", []searchuc.ColumnReport{
		{Column: "synopsis", Rows: 10, Dim: 384},
		{Column: "Synopsis jikan", Err: errors.New("embedding store unavailable")},
	})
	out := buf.String()
	if !strings.Contains(out, "manga / m") || !strings.Contains(out, "10x384") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "embedding store unavailable") {
		t.Errorf("error missing:\n%s", out)
	}
}
