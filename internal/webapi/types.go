package webapi

import (
	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"github.com/energylabel/elex/internal/session"
)

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`

	// ConfigVersion is the version of the published configuration.
	ConfigVersion uint64 `json:"configVersion"`
}

// ErrorResponse is returned for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// ModeRequest selects the rating mode.
type ModeRequest struct {
	Mode string `json:"mode"`
}

// ReferenceRequest selects the reference model.
type ReferenceRequest struct {
	Reference string `json:"reference"`
}

// TaskRequest selects the active task.
type TaskRequest struct {
	Task string `json:"task"`
}

// AxesRequest selects the dashboard axes by metric key. An empty key keeps
// the task default.
type AxesRequest struct {
	XAxis string `json:"x_axis"`
	YAxis string `json:"y_axis"`
}

// WeightRequest sets the weight of one metric.
type WeightRequest struct {
	Weight *float64 `json:"weight"`
}

// CalibrateRequest optionally overrides the calibration target fractions.
type CalibrateRequest struct {
	Fractions []float64 `json:"fractions,omitempty"`
}

// CalibrateResponse is the configuration after calibration plus the metrics
// that kept their prior boundaries.
type CalibrateResponse struct {
	Config   session.Config `json:"config"`
	Failures []string       `json:"failures"`
}

// ImportResponse reports the outcome of a boundaries or weights import.
type ImportResponse struct {
	Version  uint64             `json:"version"`
	Applied  []models.MetricID  `json:"applied"`
	Rejected []rating.Rejection `json:"rejected"`
	Error    string             `json:"error,omitempty"`
}

// EnvironmentsResponse lists the environments of the active task.
type EnvironmentsResponse struct {
	Task         models.Task `json:"task"`
	Environments []string    `json:"environments"`
}

// GridResponse is the rating grid of the current axes.
type GridResponse struct {
	Mode  rating.Mode     `json:"mode"`
	XAxis models.MetricID `json:"x_axis"`
	YAxis models.MetricID `json:"y_axis"`

	// Cells[x][y] is the compound rating of x bin x and y bin y.
	Cells rating.Grid `json:"cells"`
}
