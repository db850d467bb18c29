// Package projectconfig provides the ProjectConfig struct and loader for
// .elex.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".elex.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultMeasurements = "measurements.csv"

	DefaultReference = "ResNet101"
	DefaultTask      = string(models.TaskInference)
	DefaultMode      = "optimistic median"
	DefaultWorkers   = 4

	DefaultServerPort = 8888
	DefaultServerHost = "localhost"
)

// maxLevels bounds how far Load walks up the directory tree.
const maxLevels = 10

// PathsConfig holds the input and output files of a project.
type PathsConfig struct {
	Measurements string `yaml:"measurements,omitempty"`
	Boundaries   string `yaml:"boundaries,omitempty"`
	Weights      string `yaml:"weights,omitempty"`
	Journal      string `yaml:"journal,omitempty"`
}

// DefaultsConfig holds the initial session settings.
type DefaultsConfig struct {
	Reference string `yaml:"reference,omitempty"`
	Task      string `yaml:"task,omitempty"`
	Mode      string `yaml:"mode,omitempty"`
	XAxis     string `yaml:"x_axis,omitempty"`
	YAxis     string `yaml:"y_axis,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
}

// CalibrationConfig holds boundary calibration settings.
type CalibrationConfig struct {
	Fractions []float64 `yaml:"fractions,omitempty"`
	Skip      *bool     `yaml:"skip,omitempty"`
}

// ServerConfig holds dashboard server settings.
type ServerConfig struct {
	Port      int    `yaml:"port,omitempty"`
	Host      string `yaml:"host,omitempty"`
	NoBrowser *bool  `yaml:"no_browser,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .elex.yaml.
type ProjectConfig struct {
	Paths       PathsConfig       `yaml:"paths,omitempty"`
	Defaults    DefaultsConfig    `yaml:"defaults,omitempty"`
	Calibration CalibrationConfig `yaml:"calibration,omitempty"`
	Server      ServerConfig      `yaml:"server,omitempty"`

	// Dir is the directory of the loaded file, or empty when defaults are
	// in use. Relative paths are resolved against it.
	Dir string `yaml:"-"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Measurements: DefaultMeasurements,
		},
		Defaults: DefaultsConfig{
			Reference: DefaultReference,
			Task:      DefaultTask,
			Mode:      DefaultMode,
			Workers:   DefaultWorkers,
		},
		Calibration: CalibrationConfig{
			Fractions: defaultFractions(),
			Skip:      boolPtr(false),
		},
		Server: ServerConfig{
			Port:      DefaultServerPort,
			Host:      DefaultServerHost,
			NoBrowser: boolPtr(false),
		},
	}
}

// Load finds .elex.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	path, data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	mergeConfig(cfg, &fileCfg)
	cfg.Dir = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that can be checked without a corpus.
func (c *ProjectConfig) Validate() error {
	if _, err := models.ParseTask(c.Defaults.Task); err != nil {
		return fmt.Errorf("defaults.task: %w", err)
	}
	if _, err := rating.ParseMode(c.Defaults.Mode); err != nil {
		return fmt.Errorf("defaults.mode: %w", err)
	}
	for _, axis := range []struct{ field, key string }{
		{"defaults.x_axis", c.Defaults.XAxis},
		{"defaults.y_axis", c.Defaults.YAxis},
	} {
		if axis.key == "" {
			continue
		}
		if _, err := models.ParseMetricID(axis.key); err != nil {
			return fmt.Errorf("%s: %w", axis.field, err)
		}
	}
	if c.Defaults.Workers < 0 {
		return fmt.Errorf("defaults.workers: must not be negative, got %d", c.Defaults.Workers)
	}
	if _, err := c.Fractions(); err != nil {
		return fmt.Errorf("calibration.fractions: %w", err)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	return nil
}

// Fractions returns the calibration target fractions as the engine type.
func (c *ProjectConfig) Fractions() (rating.Fractions, error) {
	var f rating.Fractions
	if len(c.Calibration.Fractions) != len(f) {
		return f, fmt.Errorf("need %d values, got %d", len(f), len(c.Calibration.Fractions))
	}
	copy(f[:], c.Calibration.Fractions)
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

// Resolve returns p relative to the config file directory. Absolute paths,
// empty paths and paths of a default config are returned unchanged.
func (c *ProjectConfig) Resolve(p string) string {
	if p == "" || c.Dir == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// findConfigFile walks up from dir looking for .elex.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found. Real I/O errors are
// propagated.
func findConfigFile(dir string) (string, []byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for range maxLevels {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return p, data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return "", nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Measurements != "" {
		dst.Paths.Measurements = src.Paths.Measurements
	}
	if src.Paths.Boundaries != "" {
		dst.Paths.Boundaries = src.Paths.Boundaries
	}
	if src.Paths.Weights != "" {
		dst.Paths.Weights = src.Paths.Weights
	}
	if src.Paths.Journal != "" {
		dst.Paths.Journal = src.Paths.Journal
	}

	// Defaults
	if src.Defaults.Reference != "" {
		dst.Defaults.Reference = src.Defaults.Reference
	}
	if src.Defaults.Task != "" {
		dst.Defaults.Task = src.Defaults.Task
	}
	if src.Defaults.Mode != "" {
		dst.Defaults.Mode = src.Defaults.Mode
	}
	if src.Defaults.XAxis != "" {
		dst.Defaults.XAxis = src.Defaults.XAxis
	}
	if src.Defaults.YAxis != "" {
		dst.Defaults.YAxis = src.Defaults.YAxis
	}
	if src.Defaults.Workers != 0 {
		dst.Defaults.Workers = src.Defaults.Workers
	}

	// Calibration
	if len(src.Calibration.Fractions) > 0 {
		dst.Calibration.Fractions = src.Calibration.Fractions
	}
	if src.Calibration.Skip != nil {
		dst.Calibration.Skip = src.Calibration.Skip
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.Host != "" {
		dst.Server.Host = src.Server.Host
	}
	if src.Server.NoBrowser != nil {
		dst.Server.NoBrowser = src.Server.NoBrowser
	}
}

func defaultFractions() []float64 {
	f := rating.DefaultFractions
	return f[:]
}

func boolPtr(b bool) *bool {
	return &b
}
