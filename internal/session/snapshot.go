package session

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/energylabel/elex/internal/metrics"
	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
)

type envKey struct {
	task models.Task
	env  string
}

type summaryKey struct {
	task  models.Task
	env   string
	model string
}

// Snapshot is an immutable, fully computed view of the corpus under one
// Config. All query methods are safe for concurrent use.
type Snapshot struct {
	Config   Config
	Computed time.Time

	summaries   []models.Summary
	references  map[envKey]*models.Measurements
	byKey       map[summaryKey]int
	envs        map[models.Task][]string
	issues      []error
	calibration []error
}

func (snap *Snapshot) index() {
	snap.Computed = time.Now().UTC()
	snap.byKey = make(map[summaryKey]int, len(snap.summaries))
	snap.envs = make(map[models.Task][]string)
	for i, sum := range snap.summaries {
		snap.byKey[summaryKey{sum.Task, sum.Environment, sum.Name}] = i
		envs := snap.envs[sum.Task]
		if len(envs) == 0 || envs[len(envs)-1] != sum.Environment {
			snap.envs[sum.Task] = append(envs, sum.Environment)
		}
	}
}

// Issues returns the index problems found by the last re-index, one entry per
// environment for problems that hit every model of it.
func (snap *Snapshot) Issues() []error {
	return slices.Clone(snap.issues)
}

// Calibration returns the per-metric failures of the most recent calibration.
func (snap *Snapshot) Calibration() []error {
	return slices.Clone(snap.calibration)
}

// Len returns the number of summaries across all tasks.
func (snap *Snapshot) Len() int {
	return len(snap.summaries)
}

// Environments returns the environments measured for task, sorted.
func (snap *Snapshot) Environments(task models.Task) []string {
	return slices.Clone(snap.envs[task])
}

// Models returns the model names measured in env for task, sorted.
func (snap *Snapshot) Models(task models.Task, env string) []string {
	var names []string
	for _, sum := range snap.Summaries(task, env) {
		names = append(names, sum.Name)
	}
	return names
}

// Summaries returns the summaries of task, ordered by environment and model.
// With envs given, only those environments are included.
func (snap *Snapshot) Summaries(task models.Task, envs ...string) []models.Summary {
	var out []models.Summary
	for _, sum := range snap.summaries {
		if sum.Task != task {
			continue
		}
		if len(envs) > 0 && !slices.Contains(envs, sum.Environment) {
			continue
		}
		out = append(out, sum)
	}
	return out
}

// Summary returns one summary.
func (snap *Snapshot) Summary(task models.Task, env, model string) (models.Summary, error) {
	i, ok := snap.byKey[summaryKey{task, env, model}]
	if !ok {
		return models.Summary{}, fmt.Errorf("%w: %s in %s (%s)", ErrSummaryNotFound, model, env, task)
	}
	return snap.summaries[i], nil
}

// FindModel returns the summaries of a model across the environments of task.
func (snap *Snapshot) FindModel(task models.Task, model string) []models.Summary {
	var out []models.Summary
	for _, sum := range snap.summaries {
		if sum.Task == task && strings.EqualFold(sum.Name, model) {
			out = append(out, sum)
		}
	}
	return out
}

// Grid returns the rating grid of the current axes, mode and axis weights.
func (snap *Snapshot) Grid() (rating.Grid, error) {
	cfg := snap.Config
	return rating.NewGrid(cfg.Mode, cfg.Weights.Get(cfg.XAxis), cfg.Weights.Get(cfg.YAxis))
}

// RealBoundaries maps the boundaries of every metric of the active task onto
// raw values using the reference model of env. Metrics whose reference value
// is missing or zero are left out.
func (snap *Snapshot) RealBoundaries(env string) (map[models.MetricID]rating.Boundaries, error) {
	task := snap.Config.Task
	if !slices.Contains(snap.envs[task], env) {
		return nil, fmt.Errorf("%w: %q (%s)", ErrUnknownEnvironment, env, task)
	}
	ref := snap.references[envKey{task, env}]
	out := make(map[models.MetricID]rating.Boundaries)
	if ref == nil {
		return out, nil
	}
	for _, id := range task.Metrics() {
		b, _ := snap.Config.Boundaries.Get(id)
		rb, err := rating.RealBoundaries(b, ref.Values[id], id.Metric().Direction)
		if err != nil {
			continue
		}
		out[id] = rb
	}
	return out, nil
}

// Distribution describes the index corpus of a metric of the active task.
func (snap *Snapshot) Distribution(id models.MetricID) (metrics.Distribution, error) {
	task := snap.Config.Task
	if !id.Valid() {
		return metrics.Distribution{}, fmt.Errorf("%w: %d", rating.ErrUnknownMetric, int(id))
	}
	if !task.Applies(id) {
		return metrics.Distribution{}, fmt.Errorf("%w: %s is not measured for %s", ErrMetricNotApplicable, id, task)
	}
	b, _ := snap.Config.Boundaries.Get(id)
	return metrics.Describe(id, snap.calibrationCorpus(task, false)[id], b), nil
}

// calibrationCorpus collects the defined indices per metric. Metrics of task
// draw only on summaries of task and are always present in the result, even
// without values. With otherTasks set, metrics that task does not measure are
// added from the summaries of the tasks that do.
func (snap *Snapshot) calibrationCorpus(task models.Task, otherTasks bool) map[models.MetricID][]float64 {
	corpus := make(map[models.MetricID][]float64)
	for _, id := range task.Metrics() {
		corpus[id] = []float64{}
	}
	for _, sum := range snap.summaries {
		for _, id := range sum.Task.Metrics() {
			own := task.Applies(id)
			if (own && sum.Task != task) || (!own && !otherTasks) {
				continue
			}
			if idx := sum.Results[id].Index; idx != nil {
				corpus[id] = append(corpus[id], *idx)
			}
		}
	}
	return corpus
}
