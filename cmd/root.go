package cmd

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/filter-flow/internal/config"
	"github.com/kyleking/filter-flow/internal/errors"
	"github.com/kyleking/filter-flow/internal/logging"
)

var version = "dev"

type configKey struct{}

// NewApp builds the command tree. Command output is written to w.
func NewApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "filter-flow",
		Usage:   "Serve the filter-flow table catalog and its rows",
		Version: version,
		Description: `filter-flow exposes a fixed catalog of tables and their rows. The data can be
read from the terminal, served over HTTP alongside the filter-flow view,
or offered to agents as MCP tools.`,
		Writer: w,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "backend", Usage: "Where lookups are answered from (memory, duckdb, sqlite)"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level (debug, info, warn, error)"},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug output"},
			&cli.BoolFlag{Name: "verbose", Usage: "Log at debug level"},
		},
		Commands: []*cli.Command{
			TablesCommand(),
			RowsCommand(),
			CheckCommand(),
			StatsCommand(),
			ServeCommand(),
			MCPCommand(),
			ViewCommand(),
			ConfigCommand(),
		},
	}
}

func Execute(ctx context.Context, args []string) error {
	return NewApp(os.Stdout).Run(ctx, args)
}

// setup loads the configuration with any flags given on the command line and
// initializes the global logger. A config already present on ctx wins.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, *config.Config, error) {
	if cfg := getConfigFromContext(ctx); cfg != nil {
		return ctx, cfg, nil
	}

	overrides := map[string]interface{}{}

	for _, name := range []string{"backend", "log-level", "addr", "base-url"} {
		if cmd.IsSet(name) {
			overrides[name] = cmd.String(name)
		}
	}

	for _, name := range []string{"debug", "verbose"} {
		if cmd.IsSet(name) {
			overrides[name] = cmd.Bool(name)
		}
	}

	cfg, err := config.LoadConfigWithOverrides(overrides)
	if err != nil {
		if errors.GetType(err) == errors.ErrTypeConfig {
			return ctx, nil, err
		}

		return ctx, nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to load configuration")
	}

	cfg.ExpandAllPaths()

	if cfg.Debug.Verbose {
		cfg.Logging.Level = "debug"
	}

	if _, err := logging.InitializeLogger(cfg.Logging); err != nil {
		logging.SetupFallbackLogger()
		logging.ErrorWithErr("Failed to initialize logger, using fallback", err)
	}

	return withConfig(ctx, cfg), cfg, nil
}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

func getConfigFromContext(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(configKey{}).(*config.Config)
	return cfg
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}

	return os.Stdout
}
