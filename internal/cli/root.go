package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"explorer/internal/app"
	"explorer/internal/config"
	"explorer/internal/service"
)

// Env carries what every command needs once flags are parsed.
type Env struct {
	Version string
	Config  *config.Config
	Logger  *zap.Logger
	Out     io.Writer

	flags rootFlags
}

type rootFlags struct {
	configPath  string
	storeDriver string
	storeDSN    string
	logLevel    string
	noColor     bool
}

// App builds the application for one command invocation.
func (e *Env) App(ctx context.Context, emitters ...service.EventEmitter) (*app.App, error) {
	return app.New(ctx, e.Config, e.Logger, emitters...)
}

var rootExamples = `
Open a source and pick columns:
  explorer open https://api.spacexdata.com/v3/launches/past
  explorer columns add https://api.spacexdata.com/v3/launches/past mission_name
  explorer filter https://api.spacexdata.com/v3/launches/past launch_success --values true
  explorer view https://api.spacexdata.com/v3/launches/past --search falcon

Serve the explorer to an MCP client:
  explorer mcp
`

// NewRoot builds the command tree.
func NewRoot(version string) *cobra.Command {
	env := &Env{Version: version, Out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:           "explorer",
		Short:         "Explore JSON data sources as configurable tables",
		Example:       rootExamples,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return env.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&env.flags.configPath, "config", "", "Path to explorer.yaml")
	pf.StringVar(&env.flags.storeDriver, "store-driver", "", "Store driver: sqlite, postgres, mysql, mongodb or memory")
	pf.StringVar(&env.flags.storeDSN, "store-dsn", "", "Store file path or connection string")
	pf.StringVar(&env.flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.BoolVar(&env.flags.noColor, "no-color", false, "Disable colored output")

	names := make([]string, 0, len(Registered))
	for name := range Registered {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rootCmd.AddCommand(Registered[name](env))
	}
	return rootCmd
}

func (e *Env) setup(cmd *cobra.Command) error {
	e.Out = cmd.OutOrStdout()
	if e.flags.noColor {
		color.NoColor = true
	}

	cfg, err := config.Load(e.flags.configPath)
	if err != nil {
		return err
	}
	if e.flags.storeDriver != "" {
		cfg.Store.Driver = e.flags.storeDriver
	}
	if e.flags.storeDSN != "" {
		cfg.Store.DSN = e.flags.storeDSN
	}
	if e.flags.logLevel != "" {
		cfg.Log.Level = e.flags.logLevel
	}
	e.Config = cfg

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	e.Logger = logger
	return nil
}

// Execute runs the CLI and returns the process exit code.
func Execute(version string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rootCmd := NewRoot(version)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		return 1
	}
	return 0
}
