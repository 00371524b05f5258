// cmd/analyzer/migrate.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github-test-metrics/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			if e.cfg.DBURL == "" {
				return errNoDatabase
			}
			if err := database.Migrate(e.cfg.DBURL); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}
			e.ui.Success("Database migrations applied")
			return nil
		},
	}
}
