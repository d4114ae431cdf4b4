package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/topochart/internal/server"
	"github.com/matzehuels/topochart/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve live topology charts over HTTP",
		Long: `Serve live topology charts over HTTP.

Charts created through the API are kept in memory and saved to the
configured store (sqlite by default), so they survive a restart. Static
renders under /render go through the render cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			observability.NewLogHooks(logger).Install()
			defer observability.Reset()

			srv := server.New(runner, st, logger, server.Options{
				Chart:         c.Config.Chart.ChartOptions(),
				StepInterval:  c.Config.Server.StepInterval,
				HoverEndpoint: c.Config.Server.HoverEndpoint,
			})

			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			printInfo("Serving charts on %s", StyleLink.Render("http://"+addr))
			printKeyValue("Store", c.Config.Store.Backend)
			printKeyValue("Cache", c.Config.Cache.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")

	return cmd
}
