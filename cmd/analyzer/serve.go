// cmd/analyzer/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github-test-metrics/internal/api"
	"github-test-metrics/internal/database"
)

var errNoDatabase = errors.New("DB_URL is required for this command")

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored dataset and its correlation over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			return e.serve(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "Listen address")
	return cmd
}

func (e *env) serve(ctx context.Context) error {
	if e.cfg.DBURL == "" {
		return errNoDatabase
	}

	dbpool, err := pgxpool.New(ctx, e.cfg.DBURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbpool.Close()
	e.logger.Info("Database connection established")

	if err := database.Migrate(e.cfg.DBURL); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	srv := &http.Server{
		Addr:              e.cfg.HTTPAddr,
		Handler:           api.NewRouter(database.New(dbpool), e.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.logger.Info("HTTP server listening", "addr", e.cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	e.logger.Info("Shutdown signal received. Exiting.")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
