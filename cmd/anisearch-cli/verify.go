package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/anisearch/internal/domain/catalogue"
	searchuc "github.com/kailas-cloud/anisearch/internal/usecase/search"
)

func newVerifyCmd(root *rootOptions) *cobra.Command {
	var domainName, model string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every embedding file matches its catalogue and model",
		Long: "Loads each synopsis column's embedding matrix and checks its width against the " +
			"model and its row count against the catalogue. Exits non-zero on any mismatch.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, root, domainName, model)
		},
	}

	cmd.Flags().StringVar(&domainName, "domain", "", "Only this domain (default: all configured)")
	cmd.Flags().StringVar(&model, "model", "", "Only this model (default: all configured)")
	return cmd
}

func runVerify(cmd *cobra.Command, root *rootOptions, domainName, model string) error {
	ctx := cmd.Context()

	a, err := root.buildApp(ctx, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	domains := a.Catalogues.Domains()
	if domainName != "" {
		domains = []catalogue.Domain{catalogue.Domain(domainName)}
	}
	var models []string
	if model != "" {
		models = []string{model}
	} else {
		for _, m := range a.Encoders.Models() {
			models = append(models, m.Name)
		}
	}

	out := cmd.OutOrStdout()
	var errs []error
	for _, d := range domains {
		for _, m := range models {
			reports, err := a.Search.Verify(ctx, d, m)
			printReports(out, d, m, reports)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", d, m, err))
			}
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("verification failed:\n%w", err)
	}
	_, err = fmt.Fprintln(out, "All embedding files verified.")
	return err
}

func printReports(w io.Writer, d catalogue.Domain, model string, reports []searchuc.ColumnReport) {
	fmt.Fprintf(w, "%s / %s\n", d, model)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range reports {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(tw, "  %s\t%dx%d\t%s\n", r.Column, r.Rows, r.Dim, status)
	}
	_ = tw.Flush()
}
