package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/energylabel/elex/internal/jsonrpc"
	"github.com/energylabel/elex/internal/session"
	"github.com/spf13/cobra"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var (
		flags          sessionFlags
		tcpAddr        string
		tcpAllowRemote bool
	)

	cmd := &cobra.Command{
		Use:   "serve [measurements.csv]",
		Short: "Start a JSON-RPC 2.0 server over the rating session",
		Long: `Start a JSON-RPC 2.0 server over the rating session.

By default, the server communicates over stdin/stdout using newline-delimited JSON.
Use --tcp to start a TCP server instead. TCP defaults to loopback (127.0.0.1);
use --tcp-allow-remote to bind to all interfaces.

Supported methods:
  config.get            Active configuration
  config.setMode        Select the compound rating mode
  config.setReference   Select the reference model and re-index
  config.setTask        Select inference or training
  summary.list          Summaries of a task, optionally per environment
  summary.get           One summary
  boundaries.export     Boundaries payload (json or yaml)
  boundaries.import     Apply a boundaries payload
  boundaries.calibrate  Derive boundaries from the corpus
  weights.export        Weights payload (json or yaml)
  weights.import        Apply a weights payload
  weights.set           Set the weight of one metric
  grid.get              Rating grid of the current axes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProject(root)
			if err != nil {
				return err
			}
			sess, err := openSession(cfg, &flags, measurementsPath(cfg, args), session.Options{})
			if err != nil {
				return err
			}
			defer sess.Close() //nolint:errcheck

			registry := jsonrpc.NewMethodRegistry()
			jsonrpc.RegisterHandlers(registry, jsonrpc.NewHandlerContext(sess))

			logger := slog.Default()
			server := jsonrpc.NewServer(registry, logger)

			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if tcpAddr != "" {
				tcpAddr = resolveTCPAddr(tcpAddr, tcpAllowRemote, logger)

				listener, err := jsonrpc.NewTCPListener(tcpAddr, server)
				if err != nil {
					return fmt.Errorf("failed to start TCP server: %w", err)
				}
				defer listener.Close() //nolint:errcheck
				fmt.Fprintf(cmd.ErrOrStderr(), "JSON-RPC server listening on %s\n", listener.Addr()) //nolint:errcheck
				return listener.Serve(ctx)
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "JSON-RPC server running on stdio") //nolint:errcheck
			server.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&tcpAddr, "tcp", "", "TCP address to listen on (e.g., :9000)")
	cmd.Flags().BoolVar(&tcpAllowRemote, "tcp-allow-remote", false,
		"Allow binding to non-loopback addresses (WARNING: exposes the server to the network with no authentication)")

	return cmd
}

// resolveTCPAddr ensures TCP addresses default to loopback unless --tcp-allow-remote is set.
func resolveTCPAddr(addr string, allowRemote bool, logger *slog.Logger) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		// Likely just a port like "9000"; treat as ":9000".
		host = ""
		port = addr
	}

	if allowRemote {
		logger.Warn("TCP server binding to all interfaces, no authentication is provided",
			"address", addr)
		return addr
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		logger.Info("JSON-RPC server listening on TCP (local only)")
		return net.JoinHostPort("127.0.0.1", port)
	}

	return addr
}
