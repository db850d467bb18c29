// Package webapi implements the REST API the browser dashboard calls. Every
// handler reads from or writes to a rating Engine and answers with JSON.
package webapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/energylabel/elex/internal/codec"
	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"github.com/energylabel/elex/internal/session"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// maxBodyBytes bounds request bodies, payload imports included.
const maxBodyBytes = 1 << 20

// errBadRequest marks request bodies and parameters the handler rejected
// before reaching the engine.
var errBadRequest = errors.New("bad request")

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	engine Engine
	logger *slog.Logger
}

// NewHandlers creates a new Handlers for the given engine.
func NewHandlers(engine Engine, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{engine: engine, logger: logger}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		Version:       Version,
		ConfigVersion: h.engine.Snapshot().Config.Version,
	})
}

// HandleConfig returns the active configuration.
func (h *Handlers) HandleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot().Config)
}

// HandleSetMode selects the rating mode.
func (h *Handlers) HandleSetMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.engine.SetMode(req.Mode)
	h.writeSnapshot(w, snap, err)
}

// HandleSetReference selects the reference model and re-indexes.
func (h *Handlers) HandleSetReference(w http.ResponseWriter, r *http.Request) {
	var req ReferenceRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Reference == "" {
		h.writeErr(w, fmt.Errorf("%w: reference is required", errBadRequest))
		return
	}
	snap, err := h.engine.SetReference(req.Reference)
	h.writeSnapshot(w, snap, err)
}

// HandleSetTask selects the active task.
func (h *Handlers) HandleSetTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if !h.decode(w, r, &req) {
		return
	}
	task, err := models.ParseTask(req.Task)
	if err != nil {
		h.writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	snap, err := h.engine.SetTask(task)
	h.writeSnapshot(w, snap, err)
}

// HandleSetAxes selects the metric pair of the scatter plot.
func (h *Handlers) HandleSetAxes(w http.ResponseWriter, r *http.Request) {
	var req AxesRequest
	if !h.decode(w, r, &req) {
		return
	}
	snap, err := h.engine.SetAxes(req.XAxis, req.YAxis)
	h.writeSnapshot(w, snap, err)
}

// HandleEnvironments lists the environments of the active task.
func (h *Handlers) HandleEnvironments(w http.ResponseWriter, _ *http.Request) {
	snap := h.engine.Snapshot()
	task := snap.Config.Task
	envs := snap.Environments(task)
	if envs == nil {
		envs = []string{}
	}
	writeJSON(w, http.StatusOK, EnvironmentsResponse{Task: task, Environments: envs})
}

// HandleSummaries returns the summaries of the active task, optionally
// restricted to the environments named by repeated env query parameters.
func (h *Handlers) HandleSummaries(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Snapshot()
	list := snap.Summaries(snap.Config.Task, r.URL.Query()["env"]...)
	if list == nil {
		list = []models.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleSummary returns one summary of the active task.
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	env := r.PathValue("env")
	model := r.PathValue("model")
	if env == "" || model == "" {
		h.writeErr(w, fmt.Errorf("%w: environment and model are required", errBadRequest))
		return
	}
	snap := h.engine.Snapshot()
	sum, err := snap.Summary(snap.Config.Task, env, model)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleScatter returns the scatter data of the current axes.
func (h *Handlers) HandleScatter(w http.ResponseWriter, r *http.Request) {
	scale, err := session.ParseScale(r.URL.Query().Get("scale"))
	if err != nil {
		h.writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	sc, err := h.engine.Snapshot().Scatter(scale, r.URL.Query()["env"]...)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// HandleGrid returns the background rating grid.
func (h *Handlers) HandleGrid(w http.ResponseWriter, _ *http.Request) {
	snap := h.engine.Snapshot()
	grid, err := snap.Grid()
	if err != nil {
		h.writeErr(w, err)
		return
	}
	cfg := snap.Config
	writeJSON(w, http.StatusOK, GridResponse{Mode: cfg.Mode, XAxis: cfg.XAxis, YAxis: cfg.YAxis, Cells: grid})
}

// HandleExportBoundaries writes the boundaries payload in the format named
// by the format query parameter.
func (h *Handlers) HandleExportBoundaries(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.engine.ExportBoundaries)
}

// HandleExportWeights writes the weights payload.
func (h *Handlers) HandleExportWeights(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, h.engine.ExportWeights)
}

// HandleImportBoundaries applies a boundaries payload. It answers 200 when
// every entry was applied and 422 when some were rejected; the valid entries
// are applied either way.
func (h *Handlers) HandleImportBoundaries(w http.ResponseWriter, r *http.Request) {
	h.importPayload(w, r, h.engine.ImportBoundaries)
}

// HandleImportWeights applies a weights payload, see HandleImportBoundaries.
func (h *Handlers) HandleImportWeights(w http.ResponseWriter, r *http.Request) {
	h.importPayload(w, r, h.engine.ImportWeights)
}

// HandleSetWeight sets the weight of the metric named in the path.
func (h *Handlers) HandleSetWeight(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseMetricID(r.PathValue("metric"))
	if err != nil {
		h.writeErr(w, fmt.Errorf("%w: %v", rating.ErrUnknownMetric, err))
		return
	}
	var req WeightRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Weight == nil {
		h.writeErr(w, fmt.Errorf("%w: weight is required", errBadRequest))
		return
	}
	snap, err := h.engine.SetWeight(id, *req.Weight)
	h.writeSnapshot(w, snap, err)
}

// HandleCalibrate re-derives boundaries from the current indices.
func (h *Handlers) HandleCalibrate(w http.ResponseWriter, r *http.Request) {
	var req CalibrateRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}
	var fractions rating.Fractions
	if len(req.Fractions) > 0 {
		if len(req.Fractions) != len(fractions) {
			h.writeErr(w, fmt.Errorf("%w: need %d fractions, got %d", errBadRequest, len(fractions), len(req.Fractions)))
			return
		}
		copy(fractions[:], req.Fractions)
		if err := fractions.Validate(); err != nil {
			h.writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
	}

	snap, errs := h.engine.Calibrate(fractions)
	failures := make([]string, 0, len(errs))
	for _, err := range errs {
		var calErr *rating.CalibrationError
		if !errors.As(err, &calErr) {
			h.writeErr(w, err)
			return
		}
		failures = append(failures, calErr.Metric.String())
	}
	writeJSON(w, http.StatusOK, CalibrateResponse{Config: snap.Config, Failures: failures})
}

// HandleRealBoundaries returns the boundaries of the active task mapped onto
// raw values with the reference model of the env query parameter.
func (h *Handlers) HandleRealBoundaries(w http.ResponseWriter, r *http.Request) {
	env := r.URL.Query().Get("env")
	if env == "" {
		h.writeErr(w, fmt.Errorf("%w: env is required", errBadRequest))
		return
	}
	rb, err := h.engine.Snapshot().RealBoundaries(env)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rb)
}

// HandleDistribution describes the index distribution of one metric.
func (h *Handlers) HandleDistribution(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseMetricID(r.PathValue("metric"))
	if err != nil {
		h.writeErr(w, fmt.Errorf("%w: %v", rating.ErrUnknownMetric, err))
		return
	}
	d, err := h.engine.Snapshot().Distribution(id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, engine Engine, logger *slog.Logger) {
	h := NewHandlers(engine, logger)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/config", h.HandleConfig)
	mux.HandleFunc("PUT /api/config/mode", h.HandleSetMode)
	mux.HandleFunc("PUT /api/config/reference", h.HandleSetReference)
	mux.HandleFunc("PUT /api/config/task", h.HandleSetTask)
	mux.HandleFunc("PUT /api/config/axes", h.HandleSetAxes)
	mux.HandleFunc("GET /api/environments", h.HandleEnvironments)
	mux.HandleFunc("GET /api/summaries", h.HandleSummaries)
	mux.HandleFunc("GET /api/summaries/{env}/{model}", h.HandleSummary)
	mux.HandleFunc("GET /api/scatter", h.HandleScatter)
	mux.HandleFunc("GET /api/grid", h.HandleGrid)
	mux.HandleFunc("GET /api/boundaries", h.HandleExportBoundaries)
	mux.HandleFunc("PUT /api/boundaries", h.HandleImportBoundaries)
	mux.HandleFunc("POST /api/boundaries/calibrate", h.HandleCalibrate)
	mux.HandleFunc("GET /api/boundaries/real", h.HandleRealBoundaries)
	mux.HandleFunc("GET /api/weights", h.HandleExportWeights)
	mux.HandleFunc("PUT /api/weights", h.HandleImportWeights)
	mux.HandleFunc("PUT /api/weights/{metric}", h.HandleSetWeight)
	mux.HandleFunc("GET /api/distribution/{metric}", h.HandleDistribution)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) export(w http.ResponseWriter, r *http.Request, encode func(codec.Format) ([]byte, error)) {
	format, err := codec.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.writeErr(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	data, err := encode(format)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	contentType := "application/json"
	if format == codec.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

func (h *Handlers) importPayload(w http.ResponseWriter, r *http.Request, apply func([]byte) (codec.Report, error)) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeErr(w, fmt.Errorf("%w: reading body: %v", errBadRequest, err))
		return
	}
	report, err := apply(data)
	if err != nil && !errors.Is(err, rating.ErrConfigValidation) {
		h.writeErr(w, err)
		return
	}

	resp := ImportResponse{
		Version:  h.engine.Snapshot().Config.Version,
		Applied:  report.Applied,
		Rejected: report.Rejected,
	}
	if resp.Applied == nil {
		resp.Applied = []models.MetricID{}
	}
	if resp.Rejected == nil {
		resp.Rejected = []rating.Rejection{}
	}
	status := http.StatusOK
	if err != nil {
		resp.Error = err.Error()
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// decode reads a JSON request body into v and writes a 400 response when
// that fails.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.writeErr(w, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
		return false
	}
	return true
}

// writeSnapshot answers a configuration change with the resulting config.
func (h *Handlers) writeSnapshot(w http.ResponseWriter, snap *session.Snapshot, err error) {
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Config)
}

func (h *Handlers) writeErr(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("API request failed", "error", err)
	} else {
		h.logger.Debug("API request rejected", "status", code, "error", err)
	}
	writeError(w, code, err.Error())
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSummaryNotFound),
		errors.Is(err, session.ErrUnknownEnvironment):
		return http.StatusNotFound
	case errors.Is(err, rating.ErrConfigValidation),
		errors.Is(err, rating.ErrNoRatableMetrics):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest),
		errors.Is(err, codec.ErrMalformedPayload),
		errors.Is(err, session.ErrUnknownModel),
		errors.Is(err, session.ErrMetricNotApplicable),
		errors.Is(err, rating.ErrUnknownMetric),
		errors.Is(err, rating.ErrUnknownMode),
		errors.Is(err, rating.ErrInvalidWeight),
		errors.Is(err, rating.ErrInvalidBoundaries):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
