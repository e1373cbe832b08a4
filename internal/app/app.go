package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"explorer/internal/config"
	"explorer/internal/domain"
	"explorer/internal/schema"
	"explorer/internal/service"
	"explorer/internal/source"
	"explorer/internal/storage"
)

// shutdownGrace bounds how long Close waits for in-flight fetches.
const shutdownGrace = 5 * time.Second

// App wires storage, fetching and services for one process.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Backend   *storage.Backend
	Schemas   *schema.Cache
	Explorer  *service.ExplorerService
	Refresher *service.RefreshService
}

// New opens the configured backend and builds the services. Extra
// emitters receive every explorer event after the refresh scheduler.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, emitters ...service.EventEmitter) (*App, error) {
	backend, err := storage.Open(ctx, storage.Options{
		Driver:     domain.StoreDriver(cfg.Store.Driver),
		DSN:        cfg.Store.DSN,
		Database:   cfg.Store.Database,
		MaxHistory: cfg.History.MaxNodes,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	schemas, err := schema.NewCache(cfg.Schema.CacheSize)
	if err != nil {
		backend.Close()
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, Backend: backend, Schemas: schemas}

	// The scheduler reloads through the explorer, which in turn notifies
	// the scheduler; the closure breaks the construction cycle.
	a.Refresher = service.NewRefreshService(service.ReloaderFunc(func(ctx context.Context, url string) error {
		return a.Explorer.Reload(ctx, url)
	}), logger)

	fanout := service.Emitters{a.Refresher}
	fanout = append(fanout, emitters...)

	a.Explorer = service.NewExplorerService(service.ExplorerDeps{
		Configs: backend.Configs,
		History: backend.History,
		Loader:  source.NewLoader(logger, cfg.Fetch.Timeout, cfg.MaxBodyBytes()),
		Schemas: schemas,
		Emitter: fanout,
		Logger:  logger,
	})
	return a, nil
}

// Close stops scheduled reloads, lets fetches settle and closes storage.
func (a *App) Close() error {
	a.Refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	a.Refresher.WaitRunning(ctx)
	if err := a.Explorer.Wait(ctx); err != nil {
		a.Logger.Warn("fetches still running at shutdown", zap.Error(err))
	}
	return a.Backend.Close()
}
