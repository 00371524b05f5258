// cmd/analyzer/root.go
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github-test-metrics/internal/config"
	"github-test-metrics/internal/output"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "analyzer",
		Short: "Correlate unit-test emphasis with bug resolution time across GitHub projects",
		Long: `analyzer collects, for each configured GitHub project, the share of test
files that are unit tests and the median time closed bug issues stayed open,
writes the dataset to CSV and reports the Spearman correlation between them.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("db-url", "", "Postgres connection string")

	root.AddCommand(newCollectCmd(), newServeCmd(), newMigrateCmd())
	return root
}

// env is what every subcommand needs before doing its work.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	ui     *output.UI
}

// setup loads configuration with the command's flags applied and builds a
// JSON logger on the command's error stream.
func setup(cmd *cobra.Command) (*env, error) {
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Debug("Configuration loaded successfully", "projects", len(cfg.ProjectIDs))

	ui := output.New(cmd.OutOrStdout(), cmd.ErrOrStderr())
	return &env{cfg: cfg, logger: logger, ui: ui}, nil
}
