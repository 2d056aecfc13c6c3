package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/anisearch/internal/config"
	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	"github.com/kailas-cloud/anisearch/internal/domain/search/request"
	"github.com/kailas-cloud/anisearch/internal/domain/search/result"
)

type searchOptions struct {
	domain   string
	model    string
	topK     int
	json     bool
	synopsis bool
}

func newSearchCmd(root *rootOptions) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search <description>",
		Short: "Find the catalogue entries most similar to a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, root, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&opts.domain, "domain", string(catalogue.Anime), "Catalogue domain: anime or manga")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model id (default: first configured model by name)")
	cmd.Flags().IntVar(&opts.topK, "top-k", 0, "Number of results (default: search.top_k)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&opts.synopsis, "synopsis", false, "Include synopses in table output")
	return cmd
}

func runSearch(cmd *cobra.Command, root *rootOptions, opts *searchOptions, description string) error {
	ctx := cmd.Context()

	a, err := root.buildApp(ctx, func(c *config.Config) {
		if opts.topK > 0 {
			c.Search.TopK = opts.topK
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	model := opts.model
	if model == "" {
		models := a.Encoders.Models()
		if len(models) == 0 {
			return errors.New("no models configured")
		}
		model = models[0].Name
	}

	req, err := request.New(model, description)
	if err != nil {
		return fmt.Errorf("invalid query: %w", err)
	}

	results, err := a.Search.Search(ctx, catalogue.Domain(opts.domain), req)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if opts.json {
		return printJSON(cmd.OutOrStdout(), results)
	}
	return printTable(cmd.OutOrStdout(), results, opts.synopsis)
}

type jsonResult struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Synopsis   string  `json:"synopsis"`
	Similarity float64 `json:"similarity"`
	Column     string  `json:"column"`
}

func printJSON(w io.Writer, results []result.Result) error {
	out := make([]jsonResult, len(results))
	for i := range results {
		r := &results[i]
		out[i] = jsonResult{
			Rank:       r.Rank(),
			Name:       r.Name(),
			Synopsis:   r.Synopsis(),
			Similarity: r.Similarity(),
			Column:     r.Column(),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printTable(w io.Writer, results []result.Result, synopsis bool) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSIMILARITY\tNAME\tCOLUMN")
	for i := range results {
		r := &results[i]
		fmt.Fprintf(tw, "%d\t%.4f\t%s\t%s\n", r.Rank(), r.Similarity(), r.Name(), r.Column())
		if synopsis {
			fmt.Fprintf(tw, "\t\t%s\t\n", truncate(r.Synopsis(), 120))
		}
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
