package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/ngmetro/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   serveCommandName,
		Short: "Serve usage results over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = app.cfg.ServerAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router := server.NewRouter(app.service, app.logger, server.RouterConfig{
				Metrics:        app.metrics,
				MetricsHandler: app.metricsHandler,
				RequiredEnv:    []string{"NGM_USERNAME", "NGM_PASSWORD"},
			})

			return server.Run(ctx, addr, router, app.logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :50583)")

	return cmd
}
