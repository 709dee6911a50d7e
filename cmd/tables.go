package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/formatter"
)

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (table, json, csv, markdown)",
		Value:   string(formatter.FormatTable),
	}
}

func TablesCommand() *cli.Command {
	return &cli.Command{
		Name:        "tables",
		Usage:       "List the available tables and their columns",
		Description: `List every table in display order with its columns and their data types.`,
		Flags:       []cli.Flag{formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			return withProvider(ctx, cfg, func(p catalog.Provider) error {
				return runTables(ctx, output(cmd), p, cmd.String("format"))
			})
		},
	}
}

func runTables(ctx context.Context, w io.Writer, provider catalog.Provider, format string) error {
	outputFormat, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	tables, err := provider.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	return formatter.NewFormatter(outputFormat).WriteTables(w, tables)
}
