package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"explorer/internal/app"
	"explorer/internal/render"
)

// withSource opens the app with url active for the duration of fn.
// With fetch set, records are loaded before fn runs.
func withSource(cmd *cobra.Command, env *Env, url string, fetch bool, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, err := env.App(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if fetch {
		if _, err := a.Explorer.Open(ctx, url); err != nil {
			return err
		}
		if err := a.Explorer.Wait(ctx); err != nil {
			return err
		}
		if v := a.Explorer.Snapshot(); v.Error != "" {
			return fmt.Errorf("%s", v.Error)
		}
	} else if _, err := a.Explorer.Activate(ctx, url); err != nil {
		return err
	}
	return fn(ctx, a)
}

// printColumns shows the configured columns after an edit.
func printColumns(env *Env, a *app.App) error {
	cfg := a.Explorer.Config()
	if len(cfg.Paths) == 0 {
		_, err := fmt.Fprintln(env.Out, render.NoColumns)
		return err
	}
	schemaKnown := !a.Explorer.Schema().Empty()
	for i, p := range a.Explorer.Configured("") {
		line := fmt.Sprintf("%2d  %s", i+1, p.Path)
		if p.PrimaryKey {
			line += "  [key]"
		}
		if len(p.Values) > 0 {
			line += fmt.Sprintf("  values=%v", []string(p.Values))
		}
		if p.Search != "" {
			line += fmt.Sprintf("  search=%q", p.Search)
		}
		if schemaKnown && !p.Known {
			line += "  (not in schema)"
		}
		if _, err := fmt.Fprintln(env.Out, line); err != nil {
			return err
		}
	}
	return nil
}
