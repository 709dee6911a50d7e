package cmd

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/logging"
	mcpserver "github.com/kyleking/filter-flow/internal/mcp"
)

func MCPCommand() *cli.Command {
	return &cli.Command{
		Name:        "mcp",
		Usage:       "Serve the catalog as MCP tools over stdio",
		Description: `Start an MCP server on stdin/stdout offering the list_tables and get_rows tools.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			// stdout carries the protocol
			if cfg.Logging.Output == "stdout" {
				cfg.Logging.Output = "stderr"
				if _, err := logging.InitializeLogger(cfg.Logging); err != nil {
					return err
				}
			}

			return withProvider(ctx, cfg, func(p catalog.Provider) error {
				return mcpserver.New(p, version).ServeStdio()
			})
		},
	}
}
