package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
)

// DefaultReference is the model every index is normalised against unless
// configured otherwise.
const DefaultReference = "ResNet101"

// DefaultWorkers bounds the number of summaries rated concurrently.
const DefaultWorkers = 4

var (
	ErrUnknownModel        = errors.New("unknown model")
	ErrUnknownEnvironment  = errors.New("unknown environment")
	ErrSummaryNotFound     = errors.New("summary not found")
	ErrMetricNotApplicable = errors.New("metric not applicable to task")
)

// Config is the classification state a snapshot was computed with. It is a
// value: every change produces a new Config with a higher Version, and
// snapshots never share a Config that is later modified.
type Config struct {
	Version    uint64
	Reference  string
	Task       models.Task
	Mode       rating.Mode
	XAxis      models.MetricID
	YAxis      models.MetricID
	Boundaries rating.BoundaryStore
	Weights    rating.WeightStore
}

func (c Config) settings() rating.Settings {
	return rating.Settings{
		Boundaries: c.Boundaries,
		Weights:    c.Weights,
		Mode:       c.Mode,
	}
}

type configJSON struct {
	Version    uint64                                `json:"version"`
	Reference  string                                `json:"reference"`
	Task       models.Task                           `json:"task"`
	Mode       rating.Mode                           `json:"mode"`
	XAxis      models.MetricID                       `json:"x_axis"`
	YAxis      models.MetricID                       `json:"y_axis"`
	Boundaries map[models.MetricID]rating.Boundaries `json:"boundaries"`
	Weights    map[models.MetricID]float64           `json:"weights"`
}

// MarshalJSON writes the effective boundaries and weights of every metric of
// the active task, defaults included.
func (c Config) MarshalJSON() ([]byte, error) {
	out := configJSON{
		Version:    c.Version,
		Reference:  c.Reference,
		Task:       c.Task,
		Mode:       c.Mode,
		XAxis:      c.XAxis,
		YAxis:      c.YAxis,
		Boundaries: make(map[models.MetricID]rating.Boundaries),
		Weights:    make(map[models.MetricID]float64),
	}
	for _, id := range c.Task.Metrics() {
		out.Boundaries[id], _ = c.Boundaries.Get(id)
		out.Weights[id] = c.Weights.Get(id)
	}
	return json.Marshal(out)
}

// Observer is notified after every published recompute.
type Observer interface {
	Recomputed(version uint64, summaries int, elapsed time.Duration)
}

// Options configures a new session. Zero values select the defaults.
type Options struct {
	Reference string
	Task      models.Task
	Mode      rating.Mode
	// XAxis and YAxis are metric keys; empty selects the task's default axes.
	XAxis string
	YAxis string
	// Boundaries override calibrated boundaries metric by metric.
	Boundaries rating.BoundaryStore
	Weights    rating.WeightStore
	Fractions  rating.Fractions
	// SkipCalibration starts from Boundaries and the defaults only.
	SkipCalibration bool
	Workers         int
	Observer        Observer
	Journal         Journal
	Logger          *slog.Logger
}

func (o *Options) normalize() error {
	if o.Reference == "" {
		o.Reference = DefaultReference
	}
	if o.Task == "" {
		o.Task = models.TaskInference
	}
	if _, err := models.ParseTask(string(o.Task)); err != nil {
		return err
	}
	if o.Fractions == (rating.Fractions{}) {
		o.Fractions = rating.DefaultFractions
	}
	if err := o.Fractions.Validate(); err != nil {
		return fmt.Errorf("calibration fractions: %w", err)
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.Journal == nil {
		o.Journal = NopJournal{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return nil
}

// resolveAxes maps axis keys to metrics of task, falling back to the task's
// default axes for empty keys.
func resolveAxes(task models.Task, xKey, yKey string) (x, y models.MetricID, err error) {
	x, y = task.DefaultAxes()
	if xKey != "" {
		if x, err = axisMetric(task, xKey); err != nil {
			return 0, 0, err
		}
	}
	if yKey != "" {
		if y, err = axisMetric(task, yKey); err != nil {
			return 0, 0, err
		}
	}
	return x, y, nil
}

func axisMetric(task models.Task, key string) (models.MetricID, error) {
	id, err := models.ParseMetricID(key)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", rating.ErrUnknownMetric, err)
	}
	if !task.Applies(id) {
		return 0, fmt.Errorf("%w: %s is not measured for %s", ErrMetricNotApplicable, id, task)
	}
	return id, nil
}
