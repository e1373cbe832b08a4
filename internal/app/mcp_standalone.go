package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"explorer/internal/config"
	mcpserver "explorer/internal/mcp"
)

// ServeMCP runs the explorer as a standalone MCP server on stdin/stdout.
// The most recently used source is reopened before serving.
func ServeMCP(cfg *config.Config, logger *zap.Logger, version string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Explorer.Start(ctx); err != nil {
		logger.Warn("failed to reopen last source", zap.Error(err))
	}

	srv := mcpserver.New(mcpserver.Deps{
		Explorer:      a.Explorer,
		Logger:        logger,
		Version:       version,
		PrefetchLimit: cfg.Fetch.PrefetchLimit,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
		return nil
	}
}
