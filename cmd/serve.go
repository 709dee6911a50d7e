package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/kyleking/filter-flow/internal/catalog"
	"github.com/kyleking/filter-flow/internal/logging"
	"github.com/kyleking/filter-flow/internal/server"
)

func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the filter-flow view and the table API over HTTP",
		Description: `Serve the filter-flow view at the base path together with a JSON API:
  <base>api/tables               every table descriptor
  <base>api/tables/<name>/rows   rows of one table
  <base>api/rows?table=<name>    rows of one table
  <base>healthz                  liveness`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Address to listen on"},
			&cli.StringFlag{Name: "base-url", Usage: "Path prefix under which every route is mounted"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, cfg, err := setup(ctx, cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return withProvider(ctx, cfg, func(p catalog.Provider) error {
				srv := server.New(cfg.Server, p, logging.GetLogger())
				logging.Infof("Serving %s on http://%s%s", server.ViewRouteName, cfg.Server.Addr, srv.Base())

				return srv.Start(ctx)
			})
		},
	}
}
