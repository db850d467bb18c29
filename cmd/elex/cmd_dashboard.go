package main

import (
	"cmp"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/energylabel/elex/internal/session"
	"github.com/energylabel/elex/internal/webserver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newDashboardCommand(root *rootOptions) *cobra.Command {
	var (
		flags     sessionFlags
		port      int
		host      string
		noBrowser bool
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "dashboard [measurements.csv]",
		Short: "Serve the rating API for the browser dashboard",
		Long: `Start the HTTP API behind the interactive rating dashboard.

The API exposes summaries, scatter data, the rating grid and the boundary and
weight configuration under /api, and Prometheus metrics under /metrics. With
--static-dir a built dashboard is served at /.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject(root)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			sess, err := openSession(cfg, &flags, measurementsPath(cfg, args), session.Options{
				Observer: webserver.NewCollectors(reg),
			})
			if err != nil {
				return err
			}
			defer sess.Close() //nolint:errcheck

			if !cmd.Flags().Changed("no-browser") && cfg.Server.NoBrowser != nil {
				noBrowser = *cfg.Server.NoBrowser
			}
			srv, err := webserver.New(webserver.Config{
				Host:      cmp.Or(host, cfg.Server.Host),
				Port:      cmp.Or(port, cfg.Server.Port),
				NoBrowser: noBrowser,
				StaticDir: staticDir,
				Engine:    sess,
				Gatherer:  reg,
				Logger:    slog.Default(),
				Out:       cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (default from config, 8888)")
	cmd.Flags().StringVar(&host, "host", "", "Interface to bind (default from config, localhost)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "Do not open the dashboard in a browser")
	cmd.Flags().StringVar(&staticDir, "static-dir", "", "Directory holding a built dashboard to serve at /")

	return cmd
}

// cmdContext returns the command context, or a background context when the
// command runs outside Execute.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
