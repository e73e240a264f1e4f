package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tallyapp/tally/internal/analytics"
	"github.com/tallyapp/tally/internal/api"
	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/config"
	"github.com/tallyapp/tally/internal/ledger"
	"github.com/tallyapp/tally/internal/storage"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Open the database, apply pending migrations, and serve the JSON API
until interrupted.`,
		RunE: runServe,
	}

	cmd.Flags().String("listen", "", "listen address (default :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.ListenAddr = listen
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	authSvc, err := auth.NewService(store, cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	coordinator := ledger.NewCoordinator(store)
	aggregator := analytics.NewAggregator(store)
	reporter := analytics.NewReporter(store, aggregator)
	server := api.NewServer(authSvc, coordinator, aggregator, reporter)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Listen(cfg.ListenAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
