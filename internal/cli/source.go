package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"explorer/internal/app"
	"explorer/internal/render"
)

func init() {
	Register("open", OpenCommand)
	Register("schema", SchemaCommand)
	Register("sources", SourcesCommand)
	Register("forget", ForgetCommand)
	Register("prefetch", PrefetchCommand)
}

func OpenCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "open <url>",
		Short:   "Fetch a source and show its configured view",
		Example: `explorer open https://api.spacexdata.com/v3/launches/past`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], true, func(_ context.Context, a *app.App) error {
				return render.View(env.Out, a.Explorer.Snapshot())
			})
		},
	}
}

func SchemaCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "schema <url>",
		Short:   "List the property paths inferred from a source",
		Example: `explorer schema ./launches.json`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], true, func(_ context.Context, a *app.App) error {
				return render.Schema(env.Out, a.Explorer.Schema(), a.Explorer.Config())
			})
		},
	}
}

func SourcesCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List recently opened sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := env.App(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			recents, err := a.Explorer.Recents(cmd.Context())
			if err != nil {
				return err
			}
			return render.Sources(env.Out, recents, a.Explorer.Examples())
		},
	}
}

func ForgetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <url>",
		Short: "Remove a source and its saved configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], false, func(ctx context.Context, a *app.App) error {
				if err := a.Explorer.Forget(ctx, args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(env.Out, "Forgot %s\n", args[0])
				return err
			})
		},
	}
}

func PrefetchCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "prefetch <url>...",
		Short: "Fetch several sources concurrently and report their size",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.App(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			for _, r := range a.Explorer.Prefetch(cmd.Context(), args, env.Config.Fetch.PrefetchLimit) {
				if r.Error != "" {
					fmt.Fprintf(env.Out, "%s  error: %s\n", r.URL, r.Error)
					continue
				}
				fmt.Fprintf(env.Out, "%s  %d records, %d properties\n", r.URL, r.Records, r.Properties)
			}
			return nil
		},
	}
}
