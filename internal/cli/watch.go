package cli

import (
	"context"
	"fmt"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"explorer/internal/render"
	"explorer/internal/service"
)

func init() {
	Register("watch", WatchCommand)
}

// printEmitter redraws the view whenever a fetch completes.
type printEmitter struct {
	env      *Env
	mu       sync.Mutex
	explorer *service.ExplorerService
}

func (p *printEmitter) Emit(_ context.Context, event string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch event {
	case service.EventSourceLoaded:
		if p.explorer == nil {
			return
		}
		if err := render.View(p.env.Out, p.explorer.Snapshot()); err != nil {
			p.env.Logger.Warn("failed to render view", zap.Error(err))
		}
	case service.EventSourceUnavailable:
		if ev, ok := data.(service.LoadEvent); ok {
			fmt.Fprintln(p.env.Out, color.RedString("unavailable: %s", ev.Error))
		}
	}
}

func WatchCommand(env *Env) *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "watch <url>",
		Short: "Keep a source open and reprint it on every reload",
		Long: `Keep a source open and reprint its view whenever it reloads.

Local files reload when they are written. Any source reloads on its saved
cron schedule (see "explorer refresh"), or on --every for this session.`,
		Example: `explorer watch ./launches.json
explorer watch https://api.example.com/items --every "@every 30s"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			printer := &printEmitter{env: env}
			a, err := env.App(ctx, printer)
			if err != nil {
				return err
			}
			defer a.Close()
			printer.mu.Lock()
			printer.explorer = a.Explorer
			printer.mu.Unlock()

			cfg, err := a.Explorer.Activate(ctx, args[0])
			if err != nil {
				return err
			}
			if schedule != "" {
				cfg.Refresh = schedule
				if err := a.Refresher.Watch(ctx, cfg); err != nil {
					return err
				}
			}
			if _, err := a.Explorer.Refresh(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&schedule, "every", "", "Cron schedule for this session only")
	return cmd
}
