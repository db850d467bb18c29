package models

import (
	"fmt"
	"strings"
)

// MetricID identifies one entry of the closed metric catalog.
type MetricID int

const (
	MetricParameters MetricID = iota
	MetricGFLOPs
	MetricFileSize
	MetricInferencePowerDraw
	MetricInferenceTime
	MetricTrainPowerDraw
	MetricTrainPowerDrawEpoch
	MetricTrainTime
	MetricTrainTimeEpoch
	MetricTop1Val
	MetricTop5Val

	// MetricCount is the size of the catalog. Keep it last.
	MetricCount
)

// Direction tells whether larger raw values are desirable.
type Direction int

const (
	LowerIsBetter Direction = iota
	HigherIsBetter
)

func (d Direction) String() string {
	if d == HigherIsBetter {
		return "higher"
	}
	return "lower"
}

// Metric describes one measurable quantity.
type Metric struct {
	ID        MetricID
	Key       string
	Name      string
	Unit      string
	Direction Direction
}

// Label returns the axis label used by the dashboard, e.g.
// "Inference Time / Batch [ms]".
func (m Metric) Label() string {
	if m.Unit == "" {
		return m.Name
	}
	return fmt.Sprintf("%s [%s]", m.Name, m.Unit)
}

var catalog = [MetricCount]Metric{
	MetricParameters:          {MetricParameters, "parameters", "M Parameters", "#", LowerIsBetter},
	MetricGFLOPs:              {MetricGFLOPs, "gflops", "(Giga) Floating Point Operations", "#", LowerIsBetter},
	MetricFileSize:            {MetricFileSize, "fsize", "Model File Size", "B", LowerIsBetter},
	MetricInferencePowerDraw:  {MetricInferencePowerDraw, "inference_power_draw", "Inference Power Draw / Batch", "Ws", LowerIsBetter},
	MetricInferenceTime:       {MetricInferenceTime, "inference_time", "Inference Time / Batch", "ms", LowerIsBetter},
	MetricTrainPowerDraw:      {MetricTrainPowerDraw, "train_power_draw", "Full Training Power Draw", "Ws", LowerIsBetter},
	MetricTrainPowerDrawEpoch: {MetricTrainPowerDrawEpoch, "train_power_draw_epoch", "Training Power Draw per Epoch", "kWh", LowerIsBetter},
	MetricTrainTime:           {MetricTrainTime, "train_time", "Full Training Time", "h", LowerIsBetter},
	MetricTrainTimeEpoch:      {MetricTrainTimeEpoch, "train_time_epoch", "Training Time per Epoch", "h", LowerIsBetter},
	MetricTop1Val:             {MetricTop1Val, "top1_val", "Top-1 Validation Accuracy", "%", HigherIsBetter},
	MetricTop5Val:             {MetricTop5Val, "top5_val", "Top-5 Validation Accuracy", "%", HigherIsBetter},
}

var metricsByKey = func() map[string]MetricID {
	m := make(map[string]MetricID, MetricCount)
	for _, c := range catalog {
		m[c.Key] = c.ID
	}
	return m
}()

// Valid reports whether id is part of the catalog.
func (id MetricID) Valid() bool {
	return id >= 0 && id < MetricCount
}

// Metric returns the catalog entry for id. It panics for ids outside the
// catalog, which can only be produced by an explicit conversion.
func (id MetricID) Metric() Metric {
	if !id.Valid() {
		panic(fmt.Sprintf("metric id %d outside catalog", int(id)))
	}
	return catalog[id]
}

func (id MetricID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("MetricID(%d)", int(id))
	}
	return catalog[id].Key
}

func (id MetricID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("metric id %d outside catalog", int(id))
	}
	return []byte(catalog[id].Key), nil
}

func (id *MetricID) UnmarshalText(text []byte) error {
	parsed, err := ParseMetricID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseMetricID looks up a catalog entry by its key.
func ParseMetricID(key string) (MetricID, error) {
	if id, ok := metricsByKey[strings.TrimSpace(key)]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("unknown metric %q", key)
}

// AllMetrics returns every catalog id in catalog order.
func AllMetrics() []MetricID {
	ids := make([]MetricID, MetricCount)
	for i := range ids {
		ids[i] = MetricID(i)
	}
	return ids
}

// Task is the ML task a summary was measured for.
type Task string

const (
	TaskInference Task = "inference"
	TaskTraining  Task = "training"
)

var taskMetrics = map[Task][]MetricID{
	TaskInference: {
		MetricParameters, MetricGFLOPs, MetricFileSize,
		MetricInferencePowerDraw, MetricInferenceTime,
		MetricTop1Val, MetricTop5Val,
	},
	TaskTraining: {
		MetricParameters, MetricGFLOPs, MetricFileSize,
		MetricTrainPowerDraw, MetricTrainPowerDrawEpoch,
		MetricTrainTime, MetricTrainTimeEpoch,
		MetricTop1Val, MetricTop5Val,
	},
}

// Tasks returns the known tasks in display order.
func Tasks() []Task {
	return []Task{TaskInference, TaskTraining}
}

// ParseTask validates a task name.
func ParseTask(s string) (Task, error) {
	t := Task(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := taskMetrics[t]; !ok {
		return "", fmt.Errorf("unknown task %q: must be inference or training", s)
	}
	return t, nil
}

// Metrics returns the metrics applicable to the task.
func (t Task) Metrics() []MetricID {
	ms := taskMetrics[t]
	out := make([]MetricID, len(ms))
	copy(out, ms)
	return out
}

// Applies reports whether id is measured for the task.
func (t Task) Applies(id MetricID) bool {
	for _, m := range taskMetrics[t] {
		if m == id {
			return true
		}
	}
	return false
}

// DefaultAxes returns the x/y metrics the dashboard starts with for the task.
func (t Task) DefaultAxes() (x, y MetricID) {
	if t == TaskTraining {
		return MetricTrainPowerDraw, MetricTop1Val
	}
	return MetricInferencePowerDraw, MetricTop1Val
}
