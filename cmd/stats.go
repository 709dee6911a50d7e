package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/storage"
)

func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:        "stats",
		Usage:       "Display catalog statistics",
		Description: `Show how many tables, columns and rows the selected backend serves.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			return withProvider(ctx, cfg, func(p catalog.Provider) error {
				return runStats(ctx, output(cmd), p)
			})
		},
	}
}

type statsProvider interface {
	GetStats(ctx context.Context) (*storage.Stats, error)
}

func runStats(ctx context.Context, w io.Writer, provider catalog.Provider) error {
	var stats *storage.Stats

	if sp, ok := provider.(statsProvider); ok {
		var err error

		stats, err = sp.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get statistics: %w", err)
		}
	} else {
		var err error

		stats, err = countStats(ctx, provider)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Catalog Statistics\n")
	fmt.Fprintf(w, "==================\n\n")
	fmt.Fprintf(w, "Backend: %s\n", stats.Driver)
	fmt.Fprintf(w, "Tables: %d\n", stats.Tables)
	fmt.Fprintf(w, "Columns: %d\n", stats.Columns)
	fmt.Fprintf(w, "Rows: %d\n", stats.Rows)

	return nil
}

func countStats(ctx context.Context, provider catalog.Provider) (*storage.Stats, error) {
	tables, err := provider.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	stats := &storage.Stats{Driver: "memory", Tables: len(tables)}

	for _, t := range tables {
		stats.Columns += len(t.Columns)

		rows, err := provider.GetRows(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to get rows for %q: %w", t.Name, err)
		}

		stats.Rows += len(rows)
	}

	return stats, nil
}
