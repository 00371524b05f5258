// internal/database/queries.go
package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Querier is the set of queries the application runs.
type Querier interface {
	UpsertProjectSummary(ctx context.Context, arg UpsertProjectSummaryParams) (ProjectSummary, error)
	ListProjectSummaries(ctx context.Context) ([]ProjectSummary, error)
	GetProjectSummary(ctx context.Context, arg GetProjectSummaryParams) (ProjectSummary, error)
}

// Queries implements Querier on top of a DBTX.
type Queries struct {
	db DBTX
}

// New returns Queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// ProjectSummary is a row of project_summaries.
type ProjectSummary struct {
	ID                      int64
	Owner                   string
	Name                    string
	Position                int32
	UnitPresence            bool
	UnitRatio               pgtype.Float8
	MedianBugResolutionDays pgtype.Float8
	BugCount                int32
	UnitTestFiles           int32
	TestFiles               int32
	CollectedAt             time.Time
}

const projectSummaryColumns = `id, owner, name, position, unit_presence, unit_ratio, median_bug_resolution_days,
	bug_count, unit_test_files, test_files, collected_at`

func scanProjectSummary(row pgx.Row) (ProjectSummary, error) {
	var i ProjectSummary
	err := row.Scan(
		&i.ID,
		&i.Owner,
		&i.Name,
		&i.Position,
		&i.UnitPresence,
		&i.UnitRatio,
		&i.MedianBugResolutionDays,
		&i.BugCount,
		&i.UnitTestFiles,
		&i.TestFiles,
		&i.CollectedAt,
	)
	return i, err
}

const upsertProjectSummary = `
INSERT INTO project_summaries (
	owner, name, position, unit_presence, unit_ratio, median_bug_resolution_days,
	bug_count, unit_test_files, test_files, collected_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
ON CONFLICT (owner, name) DO UPDATE SET
	position = EXCLUDED.position,
	unit_presence = EXCLUDED.unit_presence,
	unit_ratio = EXCLUDED.unit_ratio,
	median_bug_resolution_days = EXCLUDED.median_bug_resolution_days,
	bug_count = EXCLUDED.bug_count,
	unit_test_files = EXCLUDED.unit_test_files,
	test_files = EXCLUDED.test_files,
	collected_at = EXCLUDED.collected_at
RETURNING ` + projectSummaryColumns

// UpsertProjectSummaryParams are the inputs of UpsertProjectSummary.
type UpsertProjectSummaryParams struct {
	Owner                   string
	Name                    string
	Position                int32
	UnitPresence            bool
	UnitRatio               pgtype.Float8
	MedianBugResolutionDays pgtype.Float8
	BugCount                int32
	UnitTestFiles           int32
	TestFiles               int32
}

// UpsertProjectSummary inserts the summary or replaces the stored one for the same project.
func (q *Queries) UpsertProjectSummary(ctx context.Context, arg UpsertProjectSummaryParams) (ProjectSummary, error) {
	row := q.db.QueryRow(ctx, upsertProjectSummary,
		arg.Owner,
		arg.Name,
		arg.Position,
		arg.UnitPresence,
		arg.UnitRatio,
		arg.MedianBugResolutionDays,
		arg.BugCount,
		arg.UnitTestFiles,
		arg.TestFiles,
	)
	return scanProjectSummary(row)
}

const listProjectSummaries = `SELECT ` + projectSummaryColumns + `
FROM project_summaries
ORDER BY position, owner, name`

// ListProjectSummaries returns all stored summaries in collection order.
func (q *Queries) ListProjectSummaries(ctx context.Context) ([]ProjectSummary, error) {
	rows, err := q.db.Query(ctx, listProjectSummaries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ProjectSummary
	for rows.Next() {
		i, err := scanProjectSummary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const getProjectSummary = `SELECT ` + projectSummaryColumns + `
FROM project_summaries
WHERE owner = $1 AND name = $2`

// GetProjectSummaryParams are the inputs of GetProjectSummary.
type GetProjectSummaryParams struct {
	Owner string
	Name  string
}

// GetProjectSummary returns pgx.ErrNoRows when the project was never stored.
func (q *Queries) GetProjectSummary(ctx context.Context, arg GetProjectSummaryParams) (ProjectSummary, error) {
	row := q.db.QueryRow(ctx, getProjectSummary, arg.Owner, arg.Name)
	return scanProjectSummary(row)
}
