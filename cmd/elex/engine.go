package main

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/energylabel/elex/internal/codec"
	"github.com/energylabel/elex/internal/dataset"
	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/projectconfig"
	"github.com/energylabel/elex/internal/rating"
	"github.com/energylabel/elex/internal/session"
	"github.com/spf13/pflag"
)

// sessionFlags override the defaults section of .elex.yaml.
type sessionFlags struct {
	reference  string
	task       string
	mode       string
	xAxis      string
	yAxis      string
	boundaries string
	weights    string
	journal    string
	workers    int
	fractions  fractionsValue
	skipCalib  bool
}

func (f *sessionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.reference, "reference", "", "Reference model every index is computed against (default from config, ResNet101)")
	fs.StringVar(&f.task, "task", "", "Task to rate: inference or training (default from config, inference)")
	fs.StringVar(&f.mode, "mode", "", `Compound rating mode, e.g. "optimistic median" or "worst"`)
	fs.StringVar(&f.xAxis, "x-axis", "", "Metric key of the scatter x axis")
	fs.StringVar(&f.yAxis, "y-axis", "", "Metric key of the scatter y axis")
	fs.StringVar(&f.boundaries, "boundaries", "", "Boundaries payload (JSON or YAML) applied over calibrated boundaries")
	fs.StringVar(&f.weights, "weights", "", "Weights payload (JSON or YAML)")
	fs.StringVar(&f.journal, "journal", "", "Append configuration changes to this NDJSON file (a directory gets a timestamped file)")
	fs.IntVar(&f.workers, "workers", 0, "Parallel rating workers (default from config, 4)")
	fs.Var(&f.fractions, "fractions", "Calibration target fractions, four strictly decreasing values in (0,1)")
	fs.BoolVar(&f.skipCalib, "no-calibrate", false, "Start from default boundaries instead of calibrating on the corpus")
}

// fractionsValue is a pflag.Value holding calibration fractions.
type fractionsValue struct {
	set bool
	f   rating.Fractions
}

var _ pflag.Value = (*fractionsValue)(nil)

func (v *fractionsValue) String() string {
	if !v.set {
		return ""
	}
	parts := make([]string, len(v.f))
	for i, x := range v.f {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (v *fractionsValue) Set(s string) error {
	parts := strings.Split(s, ",")
	var f rating.Fractions
	if len(parts) != len(f) {
		return fmt.Errorf("need %d comma-separated values, got %d", len(f), len(parts))
	}
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return fmt.Errorf("fraction %d: %w", i, err)
		}
		f[i] = x
	}
	if err := f.Validate(); err != nil {
		return err
	}
	v.f, v.set = f, true
	return nil
}

func (v *fractionsValue) Type() string {
	return "fractions"
}

// loadProject reads .elex.yaml starting at the --project directory.
func loadProject(root *rootOptions) (*projectconfig.ProjectConfig, error) {
	return projectconfig.Load(root.projectDir)
}

// measurementsPath picks the CSV argument, falling back to the configured
// measurements file.
func measurementsPath(cfg *projectconfig.ProjectConfig, args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.Resolve(cfg.Paths.Measurements)
}

// openSession loads the corpus and builds a session from config and flags.
// Fields already set in opts win over both.
func openSession(cfg *projectconfig.ProjectConfig, flags *sessionFlags, csvPath string, opts session.Options) (*session.Session, error) {
	corpus, err := dataset.LoadMeasurements(csvPath)
	if err != nil {
		return nil, err
	}
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%s contains no measurements", csvPath)
	}

	opts.Reference = cmp.Or(opts.Reference, flags.reference, cfg.Defaults.Reference)
	task, err := models.ParseTask(cmp.Or(flags.task, cfg.Defaults.Task))
	if err != nil {
		return nil, err
	}
	opts.Task = task
	if opts.Mode, err = rating.ParseMode(cmp.Or(flags.mode, cfg.Defaults.Mode)); err != nil {
		return nil, err
	}
	opts.XAxis = cmp.Or(flags.xAxis, cfg.Defaults.XAxis)
	opts.YAxis = cmp.Or(flags.yAxis, cfg.Defaults.YAxis)
	opts.Workers = cmp.Or(flags.workers, cfg.Defaults.Workers)

	if flags.fractions.set {
		opts.Fractions = flags.fractions.f
	} else if opts.Fractions, err = cfg.Fractions(); err != nil {
		return nil, fmt.Errorf("calibration.fractions: %w", err)
	}
	if flags.skipCalib || (cfg.Calibration.Skip != nil && *cfg.Calibration.Skip) {
		opts.SkipCalibration = true
	}

	if p := cmp.Or(flags.boundaries, cfg.Resolve(cfg.Paths.Boundaries)); p != "" {
		if opts.Boundaries, err = readBoundaries(p); err != nil {
			return nil, err
		}
	}
	if p := cmp.Or(flags.weights, cfg.Resolve(cfg.Paths.Weights)); p != "" {
		if opts.Weights, err = readWeights(p); err != nil {
			return nil, err
		}
	}

	if p := cmp.Or(flags.journal, cfg.Resolve(cfg.Paths.Journal)); p != "" {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			p = session.DefaultJournalPath(p)
		}
		journal, err := session.NewJSONJournal(p)
		if err != nil {
			return nil, err
		}
		slog.Debug("Journaling configuration changes", "path", journal.Path())
		opts.Journal = journal
	}

	sess, err := session.New(corpus, opts)
	if err != nil {
		if opts.Journal != nil {
			opts.Journal.Close() //nolint:errcheck
		}
		return nil, err
	}
	return sess, nil
}

// readBoundaries loads a boundaries payload file. Rejected entries are
// logged and skipped; a payload that cannot be read at all is an error.
func readBoundaries(path string) (rating.BoundaryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rating.BoundaryStore{}, fmt.Errorf("reading boundaries: %w", err)
	}
	store, report, err := codec.DecodeBoundaries(data)
	if err != nil {
		return rating.BoundaryStore{}, fmt.Errorf("%s: %w", path, err)
	}
	warnRejected(path, report)
	return store, nil
}

// readWeights loads a weights payload file, see readBoundaries.
func readWeights(path string) (rating.WeightStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return rating.WeightStore{}, fmt.Errorf("reading weights: %w", err)
	}
	weights, report, err := codec.DecodeWeights(data)
	if err != nil {
		return rating.WeightStore{}, fmt.Errorf("%s: %w", path, err)
	}
	warnRejected(path, report)
	store, err := rating.NewWeightStore(weights)
	if err != nil {
		return rating.WeightStore{}, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

func warnRejected(path string, report codec.Report) {
	var cfgErr *rating.ConfigValidationError
	if err := report.Err(); errors.As(err, &cfgErr) {
		slog.Warn("Skipping invalid payload entries", "file", path, "rejected", len(cfgErr.Rejected), "error", err)
	}
}
