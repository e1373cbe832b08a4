package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"explorer/internal/app"
	"explorer/internal/render"
)

func init() {
	Register("view", ViewCommand)
	Register("aggregate", AggregateCommand)
	Register("detail", DetailCommand)
}

type selectionFlags struct {
	keys         []string
	all          bool
	onlySelected bool
}

func (f *selectionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.keys, "select", nil, "Primary key values to select, comma separated")
	cmd.Flags().BoolVar(&f.all, "select-all", false, "Select every visible row")
}

func (f *selectionFlags) apply(ctx context.Context, a *app.App) error {
	for _, k := range f.keys {
		if _, err := a.Explorer.ToggleSelected(ctx, k); err != nil {
			return err
		}
	}
	if f.all {
		if _, err := a.Explorer.SelectAll(ctx); err != nil {
			return err
		}
	}
	if f.onlySelected {
		if _, err := a.Explorer.FilterSelected(ctx); err != nil {
			return err
		}
	}
	return nil
}

func ViewCommand(env *Env) *cobra.Command {
	var (
		search string
		limit  int
		sel    selectionFlags
	)
	cmd := &cobra.Command{
		Use:   "view <url>",
		Short: "Print the rows of a source that pass its filters",
		Example: `explorer view ./launches.json --search falcon
explorer view ./launches.json --select 1,4 --only-selected`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], true, func(ctx context.Context, a *app.App) error {
				if search != "" {
					a.Explorer.SetSearch(ctx, search)
				}
				if err := sel.apply(ctx, a); err != nil {
					return err
				}
				v := a.Explorer.Snapshot()
				if limit > 0 && len(v.Rows) > limit {
					v.Rows = v.Rows[:limit]
				}
				return render.View(env.Out, v)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Free-text pattern matched against every column")
	cmd.Flags().IntVar(&limit, "limit", 0, "Print at most this many rows")
	cmd.Flags().BoolVar(&sel.onlySelected, "only-selected", false, "Show only the selected rows")
	sel.bind(cmd)
	return cmd
}

func AggregateCommand(env *Env) *cobra.Command {
	var (
		search string
		sel    selectionFlags
	)
	cmd := &cobra.Command{
		Use:   "aggregate <url>",
		Short: "Count column values over the selected rows",
		Example: `explorer aggregate ./launches.json --select-all
explorer aggregate ./launches.json --search falcon --select-all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], true, func(ctx context.Context, a *app.App) error {
				if search != "" {
					a.Explorer.SetSearch(ctx, search)
				}
				if err := sel.apply(ctx, a); err != nil {
					return err
				}
				breakdowns, err := a.Explorer.Aggregate()
				if err != nil {
					return err
				}
				return render.Aggregates(env.Out, breakdowns)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Free-text pattern matched against every column")
	sel.bind(cmd)
	return cmd
}

func DetailCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "detail <url> <key>",
		Short: "Print the full JSON of one record by primary key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], true, func(_ context.Context, a *app.App) error {
				detail, err := a.Explorer.Detail(args[1])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(env.Out, detail)
				return err
			})
		},
	}
}
