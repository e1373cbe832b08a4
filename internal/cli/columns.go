package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"explorer/internal/app"
	"explorer/internal/domain"
	"explorer/internal/service"
)

func init() {
	Register("columns", ColumnsCommand)
	Register("key", KeyCommand)
	Register("refresh", RefreshCommand)
}

func ColumnsCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns <url>",
		Short: "Show or edit the columns of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], false, func(_ context.Context, a *app.App) error {
				return printColumns(env, a)
			})
		},
	}

	add := &cobra.Command{
		Use:     "add <url> <path>",
		Short:   "Append a property path as the last column",
		Example: `explorer columns add ./launches.json rocket.rocket_name`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], true, func(ctx context.Context, a *app.App) error {
				if _, ok := a.Explorer.Schema().Find(args[1]); !ok {
					return fmt.Errorf("%s has no property %q; see `explorer schema %s`", args[0], args[1], args[0])
				}
				if _, err := a.Explorer.AddPath(ctx, args[1]); err != nil {
					return err
				}
				return printColumns(env, a)
			})
		},
	}

	cmd.AddCommand(
		add,
		columnEdit(env, "remove <url> <path>", "Remove a column", (*service.ExplorerService).RemovePath),
		columnEdit(env, "up <url> <path>", "Move a column one position left", (*service.ExplorerService).RaisePath),
		columnEdit(env, "down <url> <path>", "Move a column one position right", (*service.ExplorerService).LowerPath),
	)
	return cmd
}

type pathEdit func(*service.ExplorerService, context.Context, string) (domain.Configuration, error)

func columnEdit(env *Env, use, short string, edit pathEdit) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], false, func(ctx context.Context, a *app.App) error {
				if _, err := edit(a.Explorer, ctx, args[1]); err != nil {
					return err
				}
				return printColumns(env, a)
			})
		},
	}
}

func KeyCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "key <url> <path>",
		Short: "Set the primary key path used for selection and details",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], false, func(ctx context.Context, a *app.App) error {
				if _, err := a.Explorer.SetPrimaryKey(ctx, args[1]); err != nil {
					return err
				}
				return printColumns(env, a)
			})
		},
	}
}

func RefreshCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "refresh <url> [schedule]",
		Short:   "Set or clear the cron schedule used by `explorer watch`",
		Example: `explorer refresh https://api.example.com/items "*/5 * * * *"`,
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := ""
			if len(args) == 2 {
				spec = args[1]
			}
			return withSource(cmd, env, args[0], false, func(ctx context.Context, a *app.App) error {
				if _, err := a.Explorer.SetRefresh(ctx, spec); err != nil {
					return err
				}
				if spec == "" {
					_, err := fmt.Fprintln(env.Out, "Scheduled refresh disabled")
					return err
				}
				_, err := fmt.Fprintf(env.Out, "Refreshing on %q\n", spec)
				return err
			})
		},
	}
}
