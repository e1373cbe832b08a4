package cli

import (
	"github.com/spf13/cobra"

	"explorer/internal/app"
)

func init() {
	Register("mcp", McpCommand)
}

func McpCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "mcp",
		Short:   "Serve the explorer to MCP clients over stdio",
		Example: `explorer mcp`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.ServeMCP(env.Config, env.Logger, env.Version)
		},
	}
}
