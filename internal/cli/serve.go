package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scribe/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline over HTTP",
		Long: `Serve the render pipeline over HTTP.

Endpoints:
  POST /v1/render   document body (JSON, TOML or YAML by Content-Type) to text
  POST /v1/graph    document body to a DOT or SVG diagram
  GET  /healthz     liveness check
  GET  /version     build information

Indentation defaults come from the config file and may be overridden per
request with query parameters (indent, tabs, max_depth, trailing_newline).`,
		Example: `  scribe serve --addr :9000
  curl -s --data-binary @site.json -H 'Content-Type: application/json' localhost:9000/v1/render`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			cfg := c.settings()
			srv := server.New(runner, loggerFromContext(ctx), cfg.PipelineOptions())
			return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	addIndentFlags(cmd)

	return cmd
}
