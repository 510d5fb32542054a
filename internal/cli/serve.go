package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/crew"
	"github.com/lunacore/luna/internal/metrics"
	"github.com/lunacore/luna/internal/signal"
	"github.com/lunacore/luna/internal/tui"
	"github.com/lunacore/luna/internal/web"
)

// AddServeCommand adds the serve command to the root command.
func AddServeCommand(root *cobra.Command) {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Long: `Serve starts the dashboard: a brief form with quick-start examples, live
activity log, file previews, deployment instructions and ZIP downloads.
Prometheus metrics are exposed on /metrics.

The server stops gracefully on Ctrl+C and waits for running generations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	root.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, addr string) error {
	ec := executionContextFrom(cmd.Context())
	out := tui.NewOutput(cmd.OutOrStdout(), ec.Output)

	if err := config.Validate(ec.Config); err != nil {
		return err
	}
	if addr == "" {
		addr = ec.Config.Server.Addr
	}

	sig := signal.NewHandler(cmd.Context())
	defer sig.Stop()
	ctx := sig.Context()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	orch, err := newOrchestrator(ctx, ec.Config, ec.Logger, crew.WithRecorder(metrics.NewCollector(reg)))
	if err != nil {
		return err
	}
	srv, err := web.New(ec.Config.Server, orch, ec.Activity, ec.Logger, web.WithGatherer(reg))
	if err != nil {
		return err
	}

	out.URL("http://"+addr, "Dashboard on http://"+addr)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return err
	}
	out.Info("Server stopped.")
	return nil
}
