// Package server initializes and runs the goodnight backend. It opens the
// database, applies migrations, wires the services and the HTTP endpoint,
// runs the periodic reaction aggregation loop, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/goodnight/internal/logging"
	"github.com/dmitrijs2005/goodnight/internal/server/config"
	"github.com/dmitrijs2005/goodnight/internal/server/httpapi"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/goodnight/internal/server/services"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
	aggregator *services.Aggregator
}

func NewApp(cfg *config.Config) (*App, error) {

	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	us := services.NewUserService(db, rm, logger)
	ms := services.NewMessageService(db, rm, logger)
	cs := services.NewCheckinService(db, rm, ms, logger)
	rs := services.NewReactionService(db, rm, logger)
	fs := services.NewFriendshipService(db, rm, logger)
	agg := services.NewAggregator(db, rm, cfg.AggregateBatchSize, logger)

	httpServer := httpapi.NewServer(cfg, logger, us, cs, ms, rs, fs, agg)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		httpServer: httpServer,
		aggregator: agg,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// runAggregationLoop drains pending reaction deltas on a fixed interval. The
// external scheduler trigger endpoint drives the same Run, so both paths stay
// safe to overlap.
func (app *App) runAggregationLoop(ctx context.Context) {
	ticker := time.NewTicker(app.config.AggregateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.aggregator.Run(ctx); err != nil {
				app.logger.Error(ctx, "aggregation run failed", "error", err.Error())
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runAggregationLoop(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
