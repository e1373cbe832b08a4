package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	Register("config", ConfigCommand)
}

func ConfigCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the configuration after file, environment and flags are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := env.Config.YAML()
			if err != nil {
				return err
			}
			_, err = env.Out.Write(out)
			return err
		},
	})
	return cmd
}
