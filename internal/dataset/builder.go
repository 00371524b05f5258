// internal/dataset/builder.go
package dataset

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github-test-metrics/internal/classify"
	custom_errors "github-test-metrics/internal/errors"
	"github-test-metrics/internal/model"
	"github-test-metrics/internal/resolution"
)

// Failure stages reported in model.ProjectFailure.
const (
	StageTree       = "tree"
	StageIssues     = "issues"
	StageResolution = "resolution"
	StageSkipped    = "skipped"
)

// RepoSource lists the raw inputs for one repository.
type RepoSource interface {
	ListBlobPaths(ctx context.Context, owner, name string) ([]string, error)
	ListClosedBugIssues(ctx context.Context, owner, name string) ([]model.IssueRecord, error)
}

// Result is the outcome of a build: the dataset of projects that succeeded and
// the failures of those that did not.
type Result struct {
	Dataset  model.Dataset
	Failures []model.ProjectFailure
}

// Builder assembles one summary per project.
type Builder struct {
	source      RepoSource
	collector   *resolution.Collector
	logger      *slog.Logger
	concurrency int
}

// NewBuilder creates a Builder. A concurrency below 1 means sequential.
func NewBuilder(source RepoSource, collector *resolution.Collector, logger *slog.Logger, concurrency int) *Builder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Builder{
		source:      source,
		collector:   collector,
		logger:      logger,
		concurrency: concurrency,
	}
}

type slot struct {
	summary *model.Summary
	failure *model.ProjectFailure
}

// Build processes every project. A failing project is recorded and skipped;
// the others still make it into the dataset, in the order given.
func (b *Builder) Build(ctx context.Context, projects []model.ProjectID) Result {
	b.logger.Info("Building dataset", "projects", len(projects), "concurrency", b.concurrency)

	slots := make([]slot, len(projects))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, id := range projects {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				slots[i].failure = &model.ProjectFailure{Project: id, Stage: StageSkipped, Err: err}
				return nil
			}
			summary, failure := b.buildProject(gctx, id)
			if summary != nil {
				summary.Position = i
			}
			slots[i] = slot{summary: summary, failure: failure}
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	for _, s := range slots {
		if s.failure != nil {
			res.Failures = append(res.Failures, *s.failure)
			continue
		}
		res.Dataset = append(res.Dataset, *s.summary)
	}

	b.logger.Info("Dataset built", "records", len(res.Dataset), "failures", len(res.Failures))
	return res
}

// buildProject runs the per-project pipeline: tree, classification, issues,
// resolution times.
func (b *Builder) buildProject(ctx context.Context, id model.ProjectID) (*model.Summary, *model.ProjectFailure) {
	logger := b.logger.With("owner", id.Owner, "repo", id.Name)
	logger.Info("Collecting project")

	fail := func(stage string, err error) (*model.Summary, *model.ProjectFailure) {
		if !errors.Is(err, context.Canceled) {
			logger.Error("Failed to collect project", "stage", stage, "error", err)
		}
		return nil, &model.ProjectFailure{Project: id, Stage: stage, Err: err}
	}

	paths, err := b.source.ListBlobPaths(ctx, id.Owner, id.Name)
	if err != nil {
		return fail(StageTree, err)
	}
	counts := classify.Classify(paths)
	logger.Debug("Classified files", "files", len(paths), "test_files", counts.Total, "unit_test_files", counts.Unit)

	issues, err := b.source.ListClosedBugIssues(ctx, id.Owner, id.Name)
	if err != nil {
		return fail(StageIssues, err)
	}

	times, err := b.collector.Times(issues)
	if err != nil {
		return fail(StageResolution, err)
	}

	summary := Summarize(id, counts, times)
	logger.Info("Collected project", "bug_count", summary.BugCount, "unit_presence", summary.UnitPresence)
	return &summary, nil
}

// Summarize composes the dataset row for one project.
func Summarize(id model.ProjectID, counts classify.Counts, times []int) model.Summary {
	s := model.Summary{
		Project:                 id,
		UnitPresence:            counts.Unit > 0,
		MedianBugResolutionDays: resolution.Median(times),
		BugCount:                len(times),
		UnitTestFiles:           counts.Unit,
		TestFiles:               counts.Total,
	}
	if r, ok := counts.Ratio(); ok {
		s.UnitRatio = model.Some(r)
	}
	return s
}

// ParseProjects converts "owner/name" strings into project identifiers.
func ParseProjects(repos []string) ([]model.ProjectID, error) {
	var identifiers []model.ProjectID
	for _, r := range repos {
		parts := strings.Split(strings.TrimSpace(r), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, &custom_errors.ErrInvalidRepoFormat{Repo: r}
		}
		identifiers = append(identifiers, model.ProjectID{Owner: parts[0], Name: parts[1]})
	}
	return identifiers, nil
}
