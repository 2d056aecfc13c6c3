package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/anisearch/internal/app"
	"github.com/kailas-cloud/anisearch/internal/config"
	logpkg "github.com/kailas-cloud/anisearch/internal/logger"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

// newRootCmd builds a fresh command tree; flag state never leaks between runs.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "anisearch-cli",
		Short:         "Query and verify anime/manga embedding stores offline",
		Long:          "Runs similarity searches and store checks against the configured catalogues without starting the HTTP server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a config file (default: config/<ENV>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(newSearchCmd(opts), newVerifyCmd(opts), newVersionCmd())
	return cmd
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load(config.GetEnv())
}

// buildApp loads the config, applies mutate and assembles the service graph.
func (o *rootOptions) buildApp(ctx context.Context, mutate func(*config.Config)) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(&cfg)
	}
	// The CLI runs once and exits; idle reclaim has nothing to do.
	cfg.Reclaim.Disabled = true

	logger, err := logpkg.NewLogger("local", logpkg.Options{Level: o.logLevel})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build service: %w", err)
	}
	return a, nil
}
