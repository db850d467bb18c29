package webserver

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/energylabel/elex/internal/webapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up API, metrics and optional dashboard routes on the
// given mux.
func registerRoutes(mux *http.ServeMux, cfg Config, gatherer prometheus.Gatherer) error {
	webapi.RegisterRoutes(mux, cfg.Engine, cfg.Logger)
	mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if cfg.StaticDir == "" {
		mux.HandleFunc("/", handleNotFound)
		return nil
	}
	handler, err := spaHandler(cfg.StaticDir)
	if err != nil {
		return fmt.Errorf("failed to initialize dashboard handler: %w", err)
	}
	mux.Handle("/", handler)
	return nil
}

// handleNotFound answers paths outside the API when no dashboard is served.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(webapi.ErrorResponse{ //nolint:errcheck
		Error: "no route for " + r.URL.Path,
		Code:  http.StatusNotFound,
	})
}

// spaHandler serves the dashboard build in dir. Paths that are not files in
// the build get index.html so client-side routes survive a reload.
func spaHandler(dir string) (http.Handler, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	root := os.DirFS(dir)
	if _, err := fs.Stat(root, "index.html"); err != nil {
		return nil, fmt.Errorf("dashboard directory %s has no index.html: %w", dir, err)
	}

	files := http.FileServerFS(root)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if fi, err := fs.Stat(root, name); name == "" || err != nil || fi.IsDir() {
			r.URL.Path = "/"
		}
		files.ServeHTTP(w, r)
	}), nil
}
