package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/errors"
	"github.com/kyleking/filter-flow/internal/formatter"
)

func RowsCommand() *cli.Command {
	return &cli.Command{
		Name:  "rows",
		Usage: "Print the rows of a table",
		Description: `Print every row of the named table. The name must match exactly;
an unknown name prints no rows.`,
		ArgsUsage: " <table>",
		Flags:     []cli.Flag{formatFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return errors.Newf(errors.ErrTypeValidation, "expected exactly 1 argument, got %d", args.Len()).
					WithSuggestion("Run 'filter-flow tables' to see the table names")
			}

			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			return withProvider(ctx, cfg, func(p catalog.Provider) error {
				return runRows(ctx, output(cmd), p, args.First(), cmd.String("format"))
			})
		},
	}
}

func runRows(ctx context.Context, w io.Writer, provider catalog.Provider, table, format string) error {
	outputFormat, err := formatter.ParseFormat(format)
	if err != nil {
		return err
	}

	rows, err := provider.GetRows(ctx, table)
	if err != nil {
		return fmt.Errorf("failed to get rows for %q: %w", table, err)
	}

	if len(rows) == 0 && outputFormat == formatter.FormatTable {
		fmt.Fprintf(w, "No rows found for table %q.\n", table)
		return nil
	}

	desc, err := describe(ctx, provider, table)
	if err != nil {
		return err
	}

	return formatter.NewFormatter(outputFormat).WriteRows(w, formatter.RowColumns(desc, rows), rows)
}

// describe returns the descriptor named table, or nil when it is not listed
func describe(ctx context.Context, provider catalog.Provider, table string) (*catalog.TableDescriptor, error) {
	tables, err := provider.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	for i := range tables {
		if tables[i].Name == table {
			return &tables[i], nil
		}
	}

	return nil, nil
}
