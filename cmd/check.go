package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/errors"
)

func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify that rows match their declared column types",
		Description: `Compare every row value with the data type declared for its column and
report the values that do not conform. Lookups are unaffected by the result.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			return withProvider(ctx, cfg, func(p catalog.Provider) error {
				return runCheck(ctx, output(cmd), p)
			})
		},
	}
}

func runCheck(ctx context.Context, w io.Writer, provider catalog.Provider) error {
	tables, err := provider.ListTables(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	rows := make(map[string][]catalog.Row, len(tables))
	total := 0

	for _, t := range tables {
		r, err := provider.GetRows(ctx, t.Name)
		if err != nil {
			return fmt.Errorf("failed to get rows for %q: %w", t.Name, err)
		}

		rows[t.Name] = r
		total += len(r)
	}

	violations := catalog.Check(tables, rows)
	if len(violations) == 0 {
		fmt.Fprintf(w, "All %d rows in %d tables conform to their columns.\n", total, len(tables))
		return nil
	}

	for _, v := range violations {
		fmt.Fprintln(w, v.String())
	}

	return errors.Newf(errors.ErrTypeValidation, "%d values do not match their declared column types", len(violations))
}
