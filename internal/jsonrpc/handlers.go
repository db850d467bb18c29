package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/energylabel/elex/internal/codec"
	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"github.com/energylabel/elex/internal/session"
)

// Engine is the rating session behind the RPC methods.
type Engine interface {
	Snapshot() *session.Snapshot
	SetMode(label string) (*session.Snapshot, error)
	SetReference(name string) (*session.Snapshot, error)
	SetTask(task models.Task) (*session.Snapshot, error)
	SetWeight(id models.MetricID, weight float64) (*session.Snapshot, error)
	Calibrate(fractions rating.Fractions) (*session.Snapshot, []error)
	ImportBoundaries(data []byte) (codec.Report, error)
	ImportWeights(data []byte) (codec.Report, error)
	ExportBoundaries(format codec.Format) ([]byte, error)
	ExportWeights(format codec.Format) ([]byte, error)
}

var _ Engine = (*session.Session)(nil)

// HandlerContext provides shared state for method handlers.
type HandlerContext struct {
	engine Engine
}

// NewHandlerContext creates a new handler context around engine.
func NewHandlerContext(engine Engine) *HandlerContext {
	return &HandlerContext{engine: engine}
}

// RegisterHandlers registers all config/summary/boundaries/weights method
// handlers.
func RegisterHandlers(registry *MethodRegistry, hctx *HandlerContext) {
	registry.Register("config.get", hctx.handleConfigGet)
	registry.Register("config.setMode", hctx.handleConfigSetMode)
	registry.Register("config.setReference", hctx.handleConfigSetReference)
	registry.Register("config.setTask", hctx.handleConfigSetTask)
	registry.Register("summary.list", hctx.handleSummaryList)
	registry.Register("summary.get", hctx.handleSummaryGet)
	registry.Register("boundaries.export", hctx.handleBoundariesExport)
	registry.Register("boundaries.import", hctx.handleBoundariesImport)
	registry.Register("boundaries.calibrate", hctx.handleBoundariesCalibrate)
	registry.Register("weights.export", hctx.handleWeightsExport)
	registry.Register("weights.import", hctx.handleWeightsImport)
	registry.Register("weights.set", hctx.handleWeightsSet)
	registry.Register("grid.get", hctx.handleGridGet)
}

// decodeParams unmarshals params into v. Absent or null params leave v at
// its zero value.
func decodeParams(params json.RawMessage, v any) *Error {
	if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrInvalidParams(err.Error())
	}
	return nil
}

// toRPCError maps engine errors onto JSON-RPC errors.
func toRPCError(err error) *Error {
	switch {
	case errors.Is(err, session.ErrSummaryNotFound),
		errors.Is(err, session.ErrUnknownEnvironment):
		return ErrNotFound(err.Error())
	case errors.Is(err, rating.ErrConfigValidation):
		return ErrConfigRejected(err.Error())
	case errors.Is(err, rating.ErrNoRatableMetrics),
		errors.Is(err, rating.ErrIndexUndefined):
		return ErrRatingUnavailable(err.Error())
	case errors.Is(err, codec.ErrMalformedPayload),
		errors.Is(err, session.ErrUnknownModel),
		errors.Is(err, session.ErrMetricNotApplicable),
		errors.Is(err, rating.ErrUnknownMetric),
		errors.Is(err, rating.ErrUnknownMode),
		errors.Is(err, rating.ErrInvalidWeight),
		errors.Is(err, rating.ErrInvalidBoundaries):
		return ErrInvalidParams(err.Error())
	default:
		return ErrInternalError(err.Error())
	}
}

func configResult(snap *session.Snapshot, err error) (any, *Error) {
	if err != nil {
		return nil, toRPCError(err)
	}
	return snap.Config, nil
}

// --- config.* ---

type SetModeParams struct {
	Mode string `json:"mode"`
}

type SetReferenceParams struct {
	Reference string `json:"reference"`
}

type SetTaskParams struct {
	Task string `json:"task"`
}

func (h *HandlerContext) handleConfigGet(_ context.Context, _ json.RawMessage) (any, *Error) {
	return h.engine.Snapshot().Config, nil
}

func (h *HandlerContext) handleConfigSetMode(_ context.Context, params json.RawMessage) (any, *Error) {
	var p SetModeParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return configResult(h.engine.SetMode(p.Mode))
}

func (h *HandlerContext) handleConfigSetReference(_ context.Context, params json.RawMessage) (any, *Error) {
	var p SetReferenceParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Reference == "" {
		return nil, ErrInvalidParams("reference is required")
	}
	return configResult(h.engine.SetReference(p.Reference))
}

func (h *HandlerContext) handleConfigSetTask(_ context.Context, params json.RawMessage) (any, *Error) {
	var p SetTaskParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	task, err := models.ParseTask(p.Task)
	if err != nil {
		return nil, ErrInvalidParams(err.Error())
	}
	return configResult(h.engine.SetTask(task))
}

// --- summary.* ---

type SummaryListParams struct {
	// Task defaults to the active task.
	Task         string   `json:"task,omitempty"`
	Environments []string `json:"environments,omitempty"`
}

type SummaryListResult struct {
	Task      models.Task      `json:"task"`
	Summaries []models.Summary `json:"summaries"`
}

type SummaryGetParams struct {
	Task        string `json:"task,omitempty"`
	Environment string `json:"environment"`
	Model       string `json:"model"`
}

func (h *HandlerContext) taskOrActive(snap *session.Snapshot, s string) (models.Task, *Error) {
	if s == "" {
		return snap.Config.Task, nil
	}
	task, err := models.ParseTask(s)
	if err != nil {
		return "", ErrInvalidParams(err.Error())
	}
	return task, nil
}

func (h *HandlerContext) handleSummaryList(_ context.Context, params json.RawMessage) (any, *Error) {
	var p SummaryListParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	snap := h.engine.Snapshot()
	task, rpcErr := h.taskOrActive(snap, p.Task)
	if rpcErr != nil {
		return nil, rpcErr
	}
	list := snap.Summaries(task, p.Environments...)
	if list == nil {
		list = []models.Summary{}
	}
	return &SummaryListResult{Task: task, Summaries: list}, nil
}

func (h *HandlerContext) handleSummaryGet(_ context.Context, params json.RawMessage) (any, *Error) {
	var p SummaryGetParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Environment == "" || p.Model == "" {
		return nil, ErrInvalidParams("environment and model are required")
	}
	snap := h.engine.Snapshot()
	task, rpcErr := h.taskOrActive(snap, p.Task)
	if rpcErr != nil {
		return nil, rpcErr
	}
	sum, err := snap.Summary(task, p.Environment, p.Model)
	if err != nil {
		return nil, toRPCError(err)
	}
	return sum, nil
}

// --- boundaries.* / weights.* ---

type ExportParams struct {
	Format string `json:"format,omitempty"`
}

// ExportResult carries an exported payload. JSON payloads are embedded as
// Payload, YAML payloads as the Document string.
type ExportResult struct {
	Format   codec.Format    `json:"format"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Document string          `json:"document,omitempty"`
}

// ImportParams carries a payload to import: either a JSON object or a string
// holding a JSON or YAML document.
type ImportParams struct {
	Payload json.RawMessage `json:"payload"`
}

type ImportResult struct {
	Version  uint64             `json:"version"`
	Applied  []models.MetricID  `json:"applied"`
	Rejected []rating.Rejection `json:"rejected"`
}

type CalibrateParams struct {
	Fractions []float64 `json:"fractions,omitempty"`
}

type CalibrateResult struct {
	Config   session.Config `json:"config"`
	Failures []string       `json:"failures"`
}

type SetWeightParams struct {
	Metric string   `json:"metric"`
	Weight *float64 `json:"weight"`
}

func (h *HandlerContext) export(params json.RawMessage, encode func(codec.Format) ([]byte, error)) (any, *Error) {
	var p ExportParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	format, err := codec.ParseFormat(p.Format)
	if err != nil {
		return nil, ErrInvalidParams(err.Error())
	}
	data, err := encode(format)
	if err != nil {
		return nil, toRPCError(err)
	}
	if format == codec.FormatYAML {
		return &ExportResult{Format: format, Document: string(data)}, nil
	}
	return &ExportResult{Format: format, Payload: json.RawMessage(data)}, nil
}

func (h *HandlerContext) importPayload(params json.RawMessage, apply func([]byte) (codec.Report, error)) (any, *Error) {
	var p ImportParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if len(p.Payload) == 0 {
		return nil, ErrInvalidParams("payload is required")
	}
	data := []byte(p.Payload)
	var doc string
	if json.Unmarshal(p.Payload, &doc) == nil {
		data = []byte(doc)
	}

	report, err := apply(data)
	if err != nil && !errors.Is(err, rating.ErrConfigValidation) {
		return nil, toRPCError(err)
	}
	result := &ImportResult{
		Version:  h.engine.Snapshot().Config.Version,
		Applied:  report.Applied,
		Rejected: report.Rejected,
	}
	if result.Applied == nil {
		result.Applied = []models.MetricID{}
	}
	if result.Rejected == nil {
		result.Rejected = []rating.Rejection{}
	}
	if err != nil {
		return nil, ErrConfigRejected(result)
	}
	return result, nil
}

func (h *HandlerContext) handleBoundariesExport(_ context.Context, params json.RawMessage) (any, *Error) {
	return h.export(params, h.engine.ExportBoundaries)
}

func (h *HandlerContext) handleWeightsExport(_ context.Context, params json.RawMessage) (any, *Error) {
	return h.export(params, h.engine.ExportWeights)
}

func (h *HandlerContext) handleBoundariesImport(_ context.Context, params json.RawMessage) (any, *Error) {
	return h.importPayload(params, h.engine.ImportBoundaries)
}

func (h *HandlerContext) handleWeightsImport(_ context.Context, params json.RawMessage) (any, *Error) {
	return h.importPayload(params, h.engine.ImportWeights)
}

func (h *HandlerContext) handleBoundariesCalibrate(_ context.Context, params json.RawMessage) (any, *Error) {
	var p CalibrateParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	var fractions rating.Fractions
	if len(p.Fractions) > 0 {
		if len(p.Fractions) != len(fractions) {
			return nil, ErrInvalidParams(fmt.Sprintf("need %d fractions, got %d", len(fractions), len(p.Fractions)))
		}
		copy(fractions[:], p.Fractions)
		if err := fractions.Validate(); err != nil {
			return nil, ErrInvalidParams(err.Error())
		}
	}

	snap, errs := h.engine.Calibrate(fractions)
	failures := make([]string, 0, len(errs))
	for _, err := range errs {
		var calErr *rating.CalibrationError
		if !errors.As(err, &calErr) {
			return nil, toRPCError(err)
		}
		failures = append(failures, calErr.Metric.String())
	}
	return &CalibrateResult{Config: snap.Config, Failures: failures}, nil
}

func (h *HandlerContext) handleWeightsSet(_ context.Context, params json.RawMessage) (any, *Error) {
	var p SetWeightParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	id, err := models.ParseMetricID(p.Metric)
	if err != nil {
		return nil, ErrInvalidParams(err.Error())
	}
	if p.Weight == nil {
		return nil, ErrInvalidParams("weight is required")
	}
	return configResult(h.engine.SetWeight(id, *p.Weight))
}

// --- grid.get ---

type GridResult struct {
	Mode  rating.Mode     `json:"mode"`
	XAxis models.MetricID `json:"x_axis"`
	YAxis models.MetricID `json:"y_axis"`
	Cells rating.Grid     `json:"cells"`
}

func (h *HandlerContext) handleGridGet(_ context.Context, _ json.RawMessage) (any, *Error) {
	snap := h.engine.Snapshot()
	grid, err := snap.Grid()
	if err != nil {
		return nil, toRPCError(err)
	}
	cfg := snap.Config
	return &GridResult{Mode: cfg.Mode, XAxis: cfg.XAxis, YAxis: cfg.YAxis, Cells: grid}, nil
}
