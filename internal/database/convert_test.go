package database

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"

	"github-test-metrics/internal/model"
)

func TestUpsertParams(t *testing.T) {
	s := model.Summary{
		Project:       model.ProjectID{Owner: "dapr", Name: "dapr"},
		Position:      2,
		UnitPresence:  true,
		UnitRatio:     model.Some(0.75),
		BugCount:      0,
		TestFiles:     4,
		UnitTestFiles: 3,
	}

	p := UpsertParams(s)

	assert.Equal(t, "dapr", p.Owner)
	assert.Equal(t, int32(2), p.Position)
	assert.Equal(t, pgtype.Float8{Float64: 0.75, Valid: true}, p.UnitRatio)
	assert.False(t, p.MedianBugResolutionDays.Valid)
	assert.Equal(t, int32(3), p.UnitTestFiles)
}

func TestToDataset(t *testing.T) {
	rows := []ProjectSummary{
		{Owner: "a", Name: "one", UnitRatio: pgtype.Float8{Float64: 0.5, Valid: true}, BugCount: 3,
			MedianBugResolutionDays: pgtype.Float8{Float64: 12, Valid: true}},
		{Owner: "b", Name: "two", Position: 4},
	}

	ds := ToDataset(rows)

	assert.Len(t, ds, 2)
	assert.Equal(t, "a/one", ds[0].Project.String())
	assert.Equal(t, model.Some(12), ds[0].MedianBugResolutionDays)
	assert.Equal(t, 3, ds[0].BugCount)
	assert.False(t, ds[1].UnitRatio.Valid)
	assert.False(t, ds[1].MedianBugResolutionDays.Valid)
	assert.Equal(t, 4, ds[1].Position)
}
