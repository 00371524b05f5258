// cmd/analyzer/collect.go
package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github-test-metrics/internal/analysis"
	"github-test-metrics/internal/database"
	"github-test-metrics/internal/dataset"
	"github-test-metrics/internal/export"
	"github-test-metrics/internal/github"
	"github-test-metrics/internal/model"
	"github-test-metrics/internal/resolution"
)

var errAllProjectsFailed = errors.New("every project failed, no dataset was produced")

func newCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Collect the dataset, write it out and report the correlation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			return e.collect(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringSlice("projects", nil, "Projects to analyze as owner/name (comma-separated)")
	f.String("github-api-url", "", "Alternate GitHub API base URL")
	f.Int("max-pages", 0, "Maximum issue pages per project")
	f.Int("max-tree-requests", 0, "Maximum tree requests when the recursive tree is truncated")
	f.Int("concurrency", 0, "Projects collected in parallel")
	f.String("negative-policy", "", "Negative resolution times: keep, drop or reject")
	f.String("dataset", "", "CSV output path")
	f.String("plot", "", "Scatter plot output path")
	return cmd
}

func (e *env) collect(ctx context.Context) error {
	cfg, logger := e.cfg, e.logger

	opts := []github.Option{
		github.WithMaxPages(cfg.MaxPages),
		github.WithMaxTreeRequests(cfg.MaxTreeRequests),
	}
	if cfg.GithubAPIURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.GithubAPIURL))
	}
	client, err := github.NewClient(cfg.GithubToken, logger, opts...)
	if err != nil {
		return err
	}

	builder := dataset.NewBuilder(client, resolution.NewCollector(cfg.Policy, logger), logger, cfg.Concurrency)
	res := builder.Build(ctx, cfg.ProjectIDs)
	if len(res.Dataset) == 0 && len(res.Failures) > 0 {
		e.ui.Failures(res.Failures)
		return errAllProjectsFailed
	}

	if err := export.WriteCSVFile(cfg.DatasetPath, res.Dataset); err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}
	logger.Info("Dataset written", "path", cfg.DatasetPath, "records", len(res.Dataset))

	if err := e.ui.Dataset(res.Dataset); err != nil {
		return err
	}

	c, aerr := analysis.Analyze(res.Dataset)
	if err := export.WriteScatterFile(cfg.PlotPath, c); err != nil {
		logger.Warn("Scatter plot not written", "path", cfg.PlotPath, "error", err)
	} else {
		e.ui.Info("Scatter plot written to %s", cfg.PlotPath)
	}
	e.ui.Correlation(c, aerr)
	e.ui.Failures(res.Failures)

	if cfg.DBURL != "" {
		if err := persist(ctx, cfg.DBURL, res.Dataset, e); err != nil {
			return fmt.Errorf("failed to persist dataset: %w", err)
		}
	}

	e.ui.Success("Dataset written to %s", cfg.DatasetPath)
	return nil
}

func persist(ctx context.Context, dbURL string, ds model.Dataset, e *env) error {
	if err := database.Migrate(dbURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	dbpool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()

	return dataset.Persist(ctx, dbpool, ds, e.logger)
}
