package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/filter-flow/internal/config"
	"github.com/kyleking/filter-flow/internal/errors"
)

func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:        "config",
		Usage:       "Display the active configuration",
		Description: `Show the current active configuration including all settings from file, environment variables, and command-line flags.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "save", Usage: "Write the active configuration to the config file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			if cmd.Bool("save") {
				if err := config.SaveConfig(cfg); err != nil {
					return errors.Wrap(err, errors.ErrTypeFileSystem, "failed to save configuration")
				}

				fmt.Fprintf(output(cmd), "Configuration saved to %s\n", config.ConfigPath())
			}

			return runConfig(ctx, output(cmd))
		},
	}
}

func runConfig(ctx context.Context, w io.Writer) error {
	cfg := getConfigFromContext(ctx)
	if cfg == nil {
		return errors.NewConfigError("failed to load configuration", "")
	}

	fmt.Fprintln(w, "====================")
	fmt.Fprintln(w, "Active Configuration:")
	fmt.Fprintf(w, "  Config File: %s\n", config.ConfigPath())

	fmt.Fprintln(w, "\nServer:")
	fmt.Fprintf(w, "  Address: %s\n", cfg.Server.Addr)
	fmt.Fprintf(w, "  Base URL: %s\n", cfg.Server.BaseURL)
	fmt.Fprintf(w, "  Read Timeout: %s\n", cfg.Server.ReadTimeout)
	fmt.Fprintf(w, "  Shutdown Timeout: %s\n", cfg.Server.ShutdownTimeout)

	fmt.Fprintln(w, "\nStore:")
	fmt.Fprintf(w, "  Backend: %s\n", cfg.Store.Backend)

	fmt.Fprintln(w, "\nLogging:")
	fmt.Fprintf(w, "  Level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(w, "  Format: %s\n", cfg.Logging.Format)
	fmt.Fprintf(w, "  Output: %s\n", cfg.Logging.Output)

	if cfg.Logging.Output == "file" {
		fmt.Fprintf(w, "  File: %s\n", cfg.Logging.File)
	}

	fmt.Fprintf(w, "  Add Source: %t\n", cfg.Logging.AddSource)

	fmt.Fprintln(w, "\nDebug:")
	fmt.Fprintf(w, "  Enabled: %t\n", cfg.Debug.Enabled)
	fmt.Fprintf(w, "  Verbose: %t\n", cfg.Debug.Verbose)

	if cfg.Debug.Enabled {
		fmt.Fprintln(w, "\nRaw Configuration (JSON):")
		fmt.Fprintln(w, "==========================")

		jsonData, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}

		fmt.Fprintln(w, string(jsonData))
	}

	return nil
}
