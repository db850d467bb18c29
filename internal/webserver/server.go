// Package webserver provides the HTTP server behind `elex dashboard`: the
// REST API, the Prometheus endpoint and, optionally, the dashboard assets.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/energylabel/elex/internal/webapi"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	browserDelay    = 500 * time.Millisecond
)

// Config holds the HTTP server configuration.
type Config struct {
	Host      string
	Port      int
	NoBrowser bool
	// StaticDir holds a built dashboard to serve at /. Empty serves the API only.
	StaticDir string

	Engine webapi.Engine
	// Gatherer backs /metrics; nil selects the default Prometheus registry.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
	// Out receives the dashboard URL line; nil selects stdout.
	Out io.Writer
}

// Server is the dashboard HTTP server.
type Server struct {
	cfg    Config
	srv    *http.Server
	logger *slog.Logger
}

// New validates cfg, fills defaults and registers every route. It fails when
// the engine is missing or StaticDir is not a usable dashboard build.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("webserver: engine is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	mux := http.NewServeMux()
	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           webapi.CORSMiddleware(mux),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	if err := registerRoutes(mux, cfg, cfg.Gatherer); err != nil {
		return nil, err
	}
	return s, nil
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln. When ctx is cancelled in-flight requests
// get shutdownTimeout to finish before Serve returns.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	url := "http://" + ln.Addr().String()
	s.logger.Info("Dashboard listening", "url", url)
	fmt.Fprintf(s.cfg.Out, "elex dashboard: %s\n", url) //nolint:errcheck

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving dashboard: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("Dashboard shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	})
	if !s.cfg.NoBrowser {
		go s.launchBrowser(gctx, url)
	}
	return g.Wait()
}

// Handler returns the root handler, CORS middleware included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) launchBrowser(ctx context.Context, url string) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(browserDelay):
	}
	if err := openBrowser(url); err != nil {
		s.logger.Debug("Could not open browser", "error", err)
	}
}

var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start", ""},
}

func openBrowser(url string) error {
	argv, ok := browserCommands[runtime.GOOS]
	if !ok {
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
	return exec.Command(argv[0], append(argv[1:], url)...).Start()
}
