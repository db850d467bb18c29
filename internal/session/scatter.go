package session

import (
	"fmt"
	"strings"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
)

// Scale selects whether scatter coordinates are indices or raw values.
type Scale string

const (
	ScaleIndex Scale = "index"
	ScaleReal  Scale = "real"
)

// ParseScale validates a scale name; empty selects ScaleIndex.
func ParseScale(s string) (Scale, error) {
	switch Scale(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScaleIndex:
		return ScaleIndex, nil
	case ScaleReal:
		return ScaleReal, nil
	default:
		return "", fmt.Errorf("unknown scale %q: must be index or real", s)
	}
}

// Point is one model in the scatter plot. X and Y are nil when the model has
// no defined coordinate on that axis.
type Point struct {
	Model  string         `json:"model"`
	X      *float64       `json:"x"`
	Y      *float64       `json:"y"`
	Rating *models.Rating `json:"rating"`
}

// Series holds the points of one environment.
type Series struct {
	Environment string  `json:"environment"`
	Points      []Point `json:"points"`
}

// Scatter is the data behind the dashboard's main plot: one series per
// environment, the boundaries of both axes in the plotted scale, and the
// histogram of compound ratings over every plotted model.
type Scatter struct {
	Task   models.Task     `json:"task"`
	Scale  Scale           `json:"scale"`
	XAxis  models.MetricID `json:"x_axis"`
	YAxis  models.MetricID `json:"y_axis"`
	XLabel string          `json:"x_label"`
	YLabel string          `json:"y_label"`
	Series []Series        `json:"series"`

	// XBoundaries and YBoundaries are nil in the real scale unless exactly
	// one environment with a usable reference value is shown.
	XBoundaries *rating.Boundaries      `json:"x_boundaries"`
	YBoundaries *rating.Boundaries      `json:"y_boundaries"`
	Histogram   [models.RatingCount]int `json:"histogram"`
	Unrated     int                     `json:"unrated"`
}

// Scatter returns the plot data of the active task for envs, or for every
// environment when envs is empty.
func (snap *Snapshot) Scatter(scale Scale, envs ...string) (Scatter, error) {
	cfg := snap.Config
	task := cfg.Task
	for _, env := range envs {
		if _, ok := snap.envIndex(task, env); !ok {
			return Scatter{}, fmt.Errorf("%w: %q (%s)", ErrUnknownEnvironment, env, task)
		}
	}
	if len(envs) == 0 {
		envs = snap.envs[task]
	}

	out := Scatter{
		Task:   task,
		Scale:  scale,
		XAxis:  cfg.XAxis,
		YAxis:  cfg.YAxis,
		XLabel: axisLabel(cfg.XAxis, scale),
		YLabel: axisLabel(cfg.YAxis, scale),
	}

	for _, env := range envs {
		series := Series{Environment: env}
		for _, sum := range snap.Summaries(task, env) {
			p := Point{Model: sum.Name, Rating: sum.Compound}
			p.X = coordinate(sum.Result(cfg.XAxis), scale)
			p.Y = coordinate(sum.Result(cfg.YAxis), scale)
			series.Points = append(series.Points, p)
			if sum.Compound == nil {
				out.Unrated++
			} else {
				out.Histogram[*sum.Compound]++
			}
		}
		out.Series = append(out.Series, series)
	}

	xb, _ := cfg.Boundaries.Get(cfg.XAxis)
	yb, _ := cfg.Boundaries.Get(cfg.YAxis)
	if scale == ScaleIndex {
		out.XBoundaries, out.YBoundaries = &xb, &yb
	} else if len(envs) == 1 {
		if rbs, err := snap.RealBoundaries(envs[0]); err == nil {
			if b, ok := rbs[cfg.XAxis]; ok {
				out.XBoundaries = &b
			}
			if b, ok := rbs[cfg.YAxis]; ok {
				out.YBoundaries = &b
			}
		}
	}
	return out, nil
}

func (snap *Snapshot) envIndex(task models.Task, env string) (int, bool) {
	for i, e := range snap.envs[task] {
		if e == env {
			return i, true
		}
	}
	return 0, false
}

func coordinate(res models.MetricResult, scale Scale) *float64 {
	if scale == ScaleReal {
		return res.Value
	}
	return res.Index
}

func axisLabel(id models.MetricID, scale Scale) string {
	m := id.Metric()
	if scale == ScaleReal {
		return m.Label()
	}
	return m.Name + " [Index]"
}
