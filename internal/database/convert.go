// internal/database/convert.go
package database

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github-test-metrics/internal/model"
)

func toFloat8(o model.OptionalFloat) pgtype.Float8 {
	return pgtype.Float8{Float64: o.Value, Valid: o.Valid}
}

func fromFloat8(f pgtype.Float8) model.OptionalFloat {
	return model.OptionalFloat{Value: f.Float64, Valid: f.Valid}
}

// UpsertParams maps a dataset row to query parameters.
func UpsertParams(s model.Summary) UpsertProjectSummaryParams {
	return UpsertProjectSummaryParams{
		Owner:                   s.Project.Owner,
		Name:                    s.Project.Name,
		Position:                int32(s.Position),
		UnitPresence:            s.UnitPresence,
		UnitRatio:               toFloat8(s.UnitRatio),
		MedianBugResolutionDays: toFloat8(s.MedianBugResolutionDays),
		BugCount:                int32(s.BugCount),
		UnitTestFiles:           int32(s.UnitTestFiles),
		TestFiles:               int32(s.TestFiles),
	}
}

// ToSummary maps a stored row back to a dataset row.
func ToSummary(r ProjectSummary) model.Summary {
	return model.Summary{
		Project:                 model.ProjectID{Owner: r.Owner, Name: r.Name},
		Position:                int(r.Position),
		UnitPresence:            r.UnitPresence,
		UnitRatio:               fromFloat8(r.UnitRatio),
		MedianBugResolutionDays: fromFloat8(r.MedianBugResolutionDays),
		BugCount:                int(r.BugCount),
		UnitTestFiles:           int(r.UnitTestFiles),
		TestFiles:               int(r.TestFiles),
	}
}

// ToDataset maps stored rows to a dataset, keeping their order.
func ToDataset(rows []ProjectSummary) model.Dataset {
	ds := make(model.Dataset, 0, len(rows))
	for _, r := range rows {
		ds = append(ds, ToSummary(r))
	}
	return ds
}
