// Package server initializes and runs the credential broker: database,
// migrations, object store, domain services and the HTTP API, with graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"github.com/ameledin/studiovault/internal/logging"
	"github.com/ameledin/studiovault/internal/server/config"
	"github.com/ameledin/studiovault/internal/server/httpapi"
	"github.com/ameledin/studiovault/internal/server/repositories/repomanager"
	"github.com/ameledin/studiovault/internal/server/services"
	"github.com/ameledin/studiovault/internal/server/storage"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewDefault()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store := storage.NewS3Store(cfg)
	mediaService := services.NewMediaService(db, rm, store, cfg)
	api := httpapi.NewServer(cfg.EndpointAddr, mediaService, logger)

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
}

// Run serves until the context is cancelled or a signal arrives, then shuts
// the API down gracefully and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "starting broker", "addr", app.config.EndpointAddr)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.api.Run()
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.api.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "api shutdown error", "error", err)
		}
		return app.db.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	app.logger.Info(context.Background(), "broker stopped")
	return nil
}
