package cli

import (
	"context"

	"github.com/spf13/cobra"

	"explorer/internal/app"
)

func init() {
	Register("undo", UndoCommand)
	Register("redo", RedoCommand)
}

func UndoCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "undo <url>",
		Short: "Revert the last configuration change of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], false, func(ctx context.Context, a *app.App) error {
				if _, err := a.Explorer.Undo(ctx); err != nil {
					return err
				}
				return printColumns(env, a)
			})
		},
	}
}

func RedoCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "redo <url>",
		Short: "Re-apply the last undone configuration change of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], false, func(ctx context.Context, a *app.App) error {
				if _, err := a.Explorer.Redo(ctx); err != nil {
					return err
				}
				return printColumns(env, a)
			})
		},
	}
}
