package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"explorer/internal/app"
	"explorer/internal/view"
)

func init() {
	Register("filter", FilterCommand)
}

func FilterCommand(env *Env) *cobra.Command {
	var (
		search string
		values []string
	)
	cmd := &cobra.Command{
		Use:   "filter <url> <path>",
		Short: "Filter a column by pattern or by a list of values",
		Long: `Filter a configured column.

Columns whose property offers a short list of options are filtered with
--values; any column can be filtered with a case-insensitive --search
pattern. Without flags the current filter and the available options are
printed. An empty --values or --search clears that filter.`,
		Example: `explorer filter ./launches.json launch_success --values true
explorer filter ./launches.json mission_name --search "^fal"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, path := args[0], args[1]
			setValues := cmd.Flags().Changed("values")
			setSearch := cmd.Flags().Changed("search")
			return withSource(cmd, env, url, !setValues && !setSearch, func(ctx context.Context, a *app.App) error {
				if setValues {
					if _, err := a.Explorer.SetValues(ctx, path, values); err != nil {
						return err
					}
				}
				if setSearch {
					if _, err := a.Explorer.SetPathSearch(ctx, path, search); err != nil {
						return err
					}
				}
				if setValues || setSearch {
					return printColumns(env, a)
				}
				return printFilterControl(env, a, path)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive pattern")
	cmd.Flags().StringSliceVar(&values, "values", nil, "Allowed values, comma separated")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <url>",
		Short: "Remove every column filter of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSource(cmd, env, args[0], false, func(ctx context.Context, a *app.App) error {
				if _, err := a.Explorer.ClearFilters(ctx); err != nil {
					return err
				}
				return printColumns(env, a)
			})
		},
	})
	return cmd
}

func printFilterControl(env *Env, a *app.App, path string) error {
	for _, c := range a.Explorer.FilterControls() {
		if c.Path != path {
			continue
		}
		if c.Mode == view.FilterModeValues {
			fmt.Fprintf(env.Out, "%s  values: %s\n", c.Path, strings.Join(c.Values, ", "))
			fmt.Fprintf(env.Out, "  options: %s\n", strings.Join(c.Options, ", "))
			return nil
		}
		_, err := fmt.Fprintf(env.Out, "%s  search: %q\n", c.Path, c.Search)
		return err
	}
	return fmt.Errorf("%s is not a column of %s", path, a.Explorer.Config().URL)
}
