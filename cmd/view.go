package cmd

import (
	"context"
	"fmt"
	"io"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/urfave/cli/v3"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/server"
)

func ViewCommand() *cli.Command {
	return &cli.Command{
		Name:        "view",
		Usage:       "Preview the filter-flow view in the terminal",
		Description: `Render the filter-flow page and print it as Markdown, or as HTML with --html.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "html", Usage: "Print the rendered HTML instead of Markdown"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			return withProvider(ctx, cfg, func(p catalog.Provider) error {
				return runView(ctx, output(cmd), p, cfg.Server.BaseURL, cmd.Bool("html"))
			})
		},
	}
}

func runView(ctx context.Context, w io.Writer, provider catalog.Provider, base string, rawHTML bool) error {
	page, err := server.RenderView(ctx, provider, base)
	if err != nil {
		return err
	}

	if rawHTML {
		_, err = io.WriteString(w, page)
		return err
	}

	markdown, err := htmltomarkdown.ConvertString(page)
	if err != nil {
		return fmt.Errorf("failed to convert view to markdown: %w", err)
	}

	_, err = fmt.Fprintln(w, markdown)

	return err
}
