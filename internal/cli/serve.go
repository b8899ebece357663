package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pondera/internal/server"
	"github.com/matzehuels/pondera/pkg/config"
	"github.com/matzehuels/pondera/pkg/flow"
	"github.com/matzehuels/pondera/pkg/metrics"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noCache   bool
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard",
		Long: `Serve the interactive dashboard: the flow diagram with branch, program and
focus controls, the weighting table and the grade calculator, plus a JSON API
under /api and Prometheus metrics under /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.settings()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var reg *metrics.Registry
			if !noMetrics {
				reg = metrics.NewRegistry()
				reg.Install()
			}

			srv, err := server.New(server.Config{
				Runner:    runner,
				Mode:      cfg.Mode(),
				Selection: cfg.Selection(),
				Metrics:   reg,
				Logger:    c.Logger,
			})
			if err != nil {
				return err
			}

			printSuccess("Dashboard on %s", StyleHighlight.Render("http://"+addr))
			printKeyValue("rows", fmt.Sprint(runner.Table.Len()))
			printKeyValue("mode", cfg.Mode().String())
			if cfg.Mode() == flow.Strict {
				printDetail("tick \"Incluir ponderación 0.1\" in the sidebar for the inclusive view")
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+config.DefaultAddr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	return cmd
}
