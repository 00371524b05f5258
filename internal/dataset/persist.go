// internal/dataset/persist.go
package dataset

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github-test-metrics/internal/database"
	"github-test-metrics/internal/model"
)

// TxBeginner is satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Persist stores the dataset as the latest snapshot, all rows or none. Rows
// keep the configured position of their project, so a project missing from
// this run leaves its previous row in place without colliding with the others.
func Persist(ctx context.Context, db TxBeginner, ds model.Dataset, logger *slog.Logger) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // no-op once committed

	if err := upsertDataset(ctx, database.New(tx), ds); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	logger.Info("Dataset persisted", "records", len(ds))
	return nil
}

func upsertDataset(ctx context.Context, q database.Querier, ds model.Dataset) error {
	for _, s := range ds {
		if _, err := q.UpsertProjectSummary(ctx, database.UpsertParams(s)); err != nil {
			return err
		}
	}
	return nil
}
