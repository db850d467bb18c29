// Package session holds the mutable classification state of one rating
// session and publishes immutable snapshots of the rated corpus.
//
// Writers are serialised. Each change builds a new Config, recomputes every
// summary against it and only then publishes the result, so readers never
// observe boundaries, weights or a mode that the summaries were not computed
// with.
package session

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/energylabel/elex/internal/codec"
	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"golang.org/x/sync/errgroup"
)

// Session owns a measurement corpus and the configuration it is rated with.
// It is safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	corpus    []models.Measurements
	models    map[string]bool
	fractions rating.Fractions
	workers   int
	observer  Observer
	journal   Journal
	logger    *slog.Logger

	current atomic.Pointer[Snapshot]
}

// New rates corpus with the given options and returns the session. Unless
// SkipCalibration is set, boundaries are first calibrated from the corpus;
// metrics that cannot be calibrated keep their default boundaries and are
// listed in Snapshot().Calibration(). Explicit opts.Boundaries win over
// calibrated ones.
func New(corpus []models.Measurements, opts Options) (*Session, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	x, y, err := resolveAxes(opts.Task, opts.XAxis, opts.YAxis)
	if err != nil {
		return nil, err
	}

	s := &Session{
		corpus:    slices.Clone(corpus),
		models:    make(map[string]bool),
		fractions: opts.Fractions,
		workers:   opts.Workers,
		observer:  opts.Observer,
		journal:   opts.Journal,
		logger:    opts.Logger,
	}
	slices.SortStableFunc(s.corpus, compareMeasurements)
	for i := range s.corpus {
		m := &s.corpus[i]
		if i > 0 && compareMeasurements(s.corpus[i-1], *m) == 0 {
			return nil, fmt.Errorf("duplicate measurements for %s in %s (%s)", m.Model, m.Environment, m.Task)
		}
		s.models[m.Model] = true
	}
	if !s.models[opts.Reference] {
		s.logger.Warn("Reference model not found in corpus, indices will be undefined", "reference", opts.Reference)
	}

	cfg := Config{
		Version:    1,
		Reference:  opts.Reference,
		Task:       opts.Task,
		Mode:       opts.Mode,
		XAxis:      x,
		YAxis:      y,
		Boundaries: opts.Boundaries,
		Weights:    opts.Weights,
	}
	snap := s.compute(cfg, nil, true)

	if !opts.SkipCalibration {
		calibrated, errs := rating.CalibrateStore(snap.calibrationCorpus(cfg.Task, true), s.fractions, rating.BoundaryStore{})
		for _, err := range errs {
			s.logger.Warn("Using default boundaries", "error", err)
		}
		cfg.Boundaries = calibrated.Merge(opts.Boundaries)
		snap = s.compute(cfg, snap, false)
		snap.calibration = errs
	}

	s.current.Store(snap)
	s.record(NewEvent(EventSessionStart, cfg.Version, SessionStartData(cfg, len(snap.summaries))))
	return s, nil
}

func compareMeasurements(a, b models.Measurements) int {
	return cmp.Or(
		cmp.Compare(a.Task, b.Task),
		cmp.Compare(a.Environment, b.Environment),
		cmp.Compare(a.Model, b.Model),
	)
}

// Snapshot returns the current published state.
func (s *Session) Snapshot() *Snapshot {
	return s.current.Load()
}

// Close closes the session journal.
func (s *Session) Close() error {
	return s.journal.Close()
}

// change describes one configuration update. mutate edits the copy of the
// current config and reports whether indices must be recomputed. finish, if
// set, runs on the new snapshot before it is published.
type change struct {
	event  EventType
	data   map[string]any
	mutate func(cfg *Config) (reindex bool, err error)
	finish func(next *Snapshot)
}

func (s *Session) apply(c change) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	cfg := prev.Config
	reindex, err := c.mutate(&cfg)
	if err != nil {
		return prev, err
	}
	cfg.Version = prev.Config.Version + 1

	next := s.compute(cfg, prev, reindex)
	if c.finish != nil {
		c.finish(next)
	}
	s.current.Store(next)
	s.record(NewEvent(c.event, cfg.Version, c.data))
	return next, nil
}

func (s *Session) record(ev Event) {
	if err := s.journal.Record(ev); err != nil {
		s.logger.Warn("Failed to write journal event", "type", ev.Type, "error", err)
	}
}

// compute rates the whole corpus against cfg. Without reindex the indices of
// prev are reused and only bins, weights and compound ratings are refreshed.
func (s *Session) compute(cfg Config, prev *Snapshot, reindex bool) *Snapshot {
	start := time.Now()
	settings := cfg.settings()

	next := &Snapshot{
		Config:     cfg,
		summaries:  make([]models.Summary, len(s.corpus)),
		references: make(map[envKey]*models.Measurements),
	}
	if prev != nil {
		next.calibration = prev.calibration
	}
	for i := range s.corpus {
		m := &s.corpus[i]
		if m.Model == cfg.Reference {
			next.references[envKey{m.Task, m.Environment}] = m
		}
	}

	perSummary := make([][]error, len(s.corpus))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range s.corpus {
		g.Go(func() error {
			if reindex || prev == nil {
				m := &s.corpus[i]
				next.summaries[i], perSummary[i] = rating.Rate(m, next.references[envKey{m.Task, m.Environment}], settings)
			} else {
				next.summaries[i] = rating.Reclassify(prev.summaries[i], settings)
			}
			return nil
		})
	}
	_ = g.Wait()

	if reindex || prev == nil {
		next.issues = dedupeIssues(perSummary)
		if len(next.issues) > 0 {
			s.logger.Warn("Some indices are undefined", "version", cfg.Version, "issues", len(next.issues))
		}
	} else {
		next.issues = prev.issues
	}
	next.index()

	elapsed := time.Since(start)
	s.logger.Debug("Recomputed summaries",
		"version", cfg.Version,
		"summaries", len(next.summaries),
		"reindex", reindex,
		"duration", elapsed)
	if s.observer != nil {
		s.observer.Recomputed(cfg.Version, len(next.summaries), elapsed)
	}
	return next
}

// dedupeIssues flattens per-summary errors, keeping one entry for problems
// that hit every model of an environment.
func dedupeIssues(perSummary [][]error) []error {
	type issueKey struct {
		env, model, reason string
		metric             models.MetricID
	}
	seen := make(map[issueKey]bool)
	var out []error
	for _, errs := range perSummary {
		for _, err := range errs {
			var ie *rating.IndexError
			if errors.As(err, &ie) {
				k := issueKey{ie.Environment, ie.Model, ie.Reason, ie.Metric}
				if seen[k] {
					continue
				}
				seen[k] = true
			}
			out = append(out, err)
		}
	}
	return out
}

// ReplaceBoundaries swaps the whole boundary store.
func (s *Session) ReplaceBoundaries(store rating.BoundaryStore) (*Snapshot, error) {
	return s.apply(change{
		event: EventBoundaries,
		data:  MetricsData(metricKeys(store.Metrics()), nil),
		mutate: func(cfg *Config) (bool, error) {
			cfg.Boundaries = store
			return false, nil
		},
	})
}

// ReplaceWeights swaps the whole weight store.
func (s *Session) ReplaceWeights(store rating.WeightStore) (*Snapshot, error) {
	return s.apply(change{
		event: EventWeights,
		data:  MetricsData(metricKeys(store.Metrics()), nil),
		mutate: func(cfg *Config) (bool, error) {
			cfg.Weights = store
			return false, nil
		},
	})
}

// SetWeight changes the weight of a single metric.
func (s *Session) SetWeight(id models.MetricID, weight float64) (*Snapshot, error) {
	return s.apply(change{
		event: EventWeights,
		data:  map[string]any{"metric": id.String(), "weight": weight},
		mutate: func(cfg *Config) (bool, error) {
			next, err := cfg.Weights.Update(weight, id)
			if err != nil {
				return false, err
			}
			cfg.Weights = next
			return false, nil
		},
	})
}

// SetMode selects the rating mode by label, see rating.ParseMode.
func (s *Session) SetMode(label string) (*Snapshot, error) {
	mode, err := rating.ParseMode(label)
	if err != nil {
		return s.Snapshot(), err
	}
	data := ChangeData("", mode.String())
	return s.apply(change{
		event: EventModeChanged,
		data:  data,
		mutate: func(cfg *Config) (bool, error) {
			data["from"] = cfg.Mode.String()
			cfg.Mode = mode
			return false, nil
		},
	})
}

// SetReference re-indexes the corpus against another model.
func (s *Session) SetReference(name string) (*Snapshot, error) {
	if !s.models[name] {
		return s.Snapshot(), fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	data := ChangeData("", name)
	return s.apply(change{
		event: EventReferenceChanged,
		data:  data,
		mutate: func(cfg *Config) (bool, error) {
			data["from"] = cfg.Reference
			cfg.Reference = name
			return true, nil
		},
	})
}

// SetTask switches the active task. Axes that do not apply to the new task
// fall back to its default axes.
func (s *Session) SetTask(task models.Task) (*Snapshot, error) {
	task, err := models.ParseTask(string(task))
	if err != nil {
		return s.Snapshot(), err
	}
	data := ChangeData("", string(task))
	return s.apply(change{
		event: EventTaskChanged,
		data:  data,
		mutate: func(cfg *Config) (bool, error) {
			data["from"] = string(cfg.Task)
			cfg.Task = task
			dx, dy := task.DefaultAxes()
			if !task.Applies(cfg.XAxis) {
				cfg.XAxis = dx
			}
			if !task.Applies(cfg.YAxis) {
				cfg.YAxis = dy
			}
			return false, nil
		},
	})
}

// SetAxes selects the metric pair shown by the dashboard.
func (s *Session) SetAxes(xKey, yKey string) (*Snapshot, error) {
	return s.apply(change{
		event: EventAxesChanged,
		data:  map[string]any{"x_axis": xKey, "y_axis": yKey},
		mutate: func(cfg *Config) (bool, error) {
			x, y, err := resolveAxes(cfg.Task, xKey, yKey)
			if err != nil {
				return false, err
			}
			cfg.XAxis, cfg.YAxis = x, y
			return false, nil
		},
	})
}

// Calibrate derives new boundaries for every metric of the active task from
// the current indices. Metrics without enough data keep their boundaries and
// are returned as *rating.CalibrationError values.
func (s *Session) Calibrate(fractions rating.Fractions) (*Snapshot, []error) {
	if fractions == (rating.Fractions{}) {
		fractions = s.fractions
	}
	if err := fractions.Validate(); err != nil {
		return s.Snapshot(), []error{err}
	}

	var errs []error
	snap, _ := s.apply(change{
		event: EventCalibrated,
		data:  map[string]any{"fractions": fractions[:]},
		mutate: func(cfg *Config) (bool, error) {
			prev := s.current.Load()
			var next rating.BoundaryStore
			next, errs = rating.CalibrateStore(prev.calibrationCorpus(cfg.Task, false), fractions, cfg.Boundaries)
			cfg.Boundaries = next
			return false, nil
		},
		finish: func(next *Snapshot) {
			next.calibration = errs
		},
	})
	for _, err := range errs {
		s.logger.Warn("Keeping prior boundaries", "error", err)
	}
	return snap, errs
}

// ImportBoundaries applies the valid entries of a boundaries payload on top
// of the current boundaries. The returned error is codec.ErrMalformedPayload
// when nothing could be read, or a *rating.ConfigValidationError when some
// entries were rejected; in the latter case the valid entries are applied.
func (s *Session) ImportBoundaries(data []byte) (codec.Report, error) {
	decoded, report, err := codec.DecodeBoundaries(data)
	if err != nil {
		return report, err
	}
	_, err = s.apply(change{
		event: EventImported,
		data:  importData("boundaries", report),
		mutate: func(cfg *Config) (bool, error) {
			cfg.Boundaries = cfg.Boundaries.Merge(decoded)
			return false, nil
		},
	})
	if err != nil {
		return report, err
	}
	return report, report.Err()
}

// ImportWeights applies the valid entries of a weights payload on top of the
// current weights, with the same error contract as ImportBoundaries.
func (s *Session) ImportWeights(data []byte) (codec.Report, error) {
	decoded, report, err := codec.DecodeWeights(data)
	if err != nil {
		return report, err
	}
	_, err = s.apply(change{
		event: EventImported,
		data:  importData("weights", report),
		mutate: func(cfg *Config) (bool, error) {
			next, err := cfg.Weights.UpdateAll(decoded)
			if err != nil {
				return false, err
			}
			cfg.Weights = next
			return false, nil
		},
	})
	if err != nil {
		return report, err
	}
	return report, report.Err()
}

func importData(kind string, r codec.Report) map[string]any {
	rejected := make([]string, 0, len(r.Rejected))
	for _, rej := range r.Rejected {
		rejected = append(rejected, rej.Metric)
	}
	d := MetricsData(metricKeys(r.Applied), rejected)
	d["kind"] = kind
	return d
}

// ExportBoundaries encodes the current boundaries.
func (s *Session) ExportBoundaries(format codec.Format) ([]byte, error) {
	return codec.EncodeBoundaries(s.Snapshot().Config.Boundaries, format)
}

// ExportWeights encodes the current weights.
func (s *Session) ExportWeights(format codec.Format) ([]byte, error) {
	return codec.EncodeWeights(s.Snapshot().Config.Weights, format)
}

func metricKeys(ids []models.MetricID) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}
	return keys
}
