package projectconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_ReturnsDefaults(t *testing.T) {
	cfg := New()

	assertEqual(t, "Paths.Measurements", DefaultMeasurements, cfg.Paths.Measurements)
	assertEqual(t, "Paths.Boundaries", "", cfg.Paths.Boundaries)
	assertEqual(t, "Defaults.Reference", "ResNet101", cfg.Defaults.Reference)
	assertEqual(t, "Defaults.Task", "inference", cfg.Defaults.Task)
	assertEqual(t, "Defaults.Mode", "optimistic median", cfg.Defaults.Mode)
	assertEqualInt(t, "Defaults.Workers", 4, cfg.Defaults.Workers)
	assertBoolPtr(t, "Calibration.Skip", false, cfg.Calibration.Skip)
	assertEqualInt(t, "Server.Port", 8888, cfg.Server.Port)
	assertEqual(t, "Server.Host", "localhost", cfg.Server.Host)
	assertBoolPtr(t, "Server.NoBrowser", false, cfg.Server.NoBrowser)

	f, err := cfg.Fractions()
	if err != nil {
		t.Fatalf("Fractions() error: %v", err)
	}
	if f != [4]float64{0.8, 0.6, 0.4, 0.2} {
		t.Errorf("Fractions() = %v, want [0.8 0.6 0.4 0.2]", f)
	}
}

func TestNew_DoesNotShareFractions(t *testing.T) {
	a := New()
	a.Calibration.Fractions[0] = 0.9

	b := New()
	if b.Calibration.Fractions[0] != 0.8 {
		t.Errorf("New() fractions changed through another config: %v", b.Calibration.Fractions)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
paths:
  measurements: data/results.csv
  boundaries: boundaries.yaml
  weights: /etc/elex/weights.json
  journal: journal/
defaults:
  reference: MobileNetV2
  task: training
  mode: pessimistic mean
  x_axis: train_time
  y_axis: top5_val
  workers: 8
calibration:
  fractions: [0.9, 0.7, 0.5, 0.3]
  skip: true
server:
  port: 9000
  host: 0.0.0.0
  no_browser: true
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Paths.Measurements", "data/results.csv", cfg.Paths.Measurements)
	assertEqual(t, "Paths.Boundaries", "boundaries.yaml", cfg.Paths.Boundaries)
	assertEqual(t, "Paths.Weights", "/etc/elex/weights.json", cfg.Paths.Weights)
	assertEqual(t, "Paths.Journal", "journal/", cfg.Paths.Journal)
	assertEqual(t, "Defaults.Reference", "MobileNetV2", cfg.Defaults.Reference)
	assertEqual(t, "Defaults.Task", "training", cfg.Defaults.Task)
	assertEqual(t, "Defaults.Mode", "pessimistic mean", cfg.Defaults.Mode)
	assertEqual(t, "Defaults.XAxis", "train_time", cfg.Defaults.XAxis)
	assertEqual(t, "Defaults.YAxis", "top5_val", cfg.Defaults.YAxis)
	assertEqualInt(t, "Defaults.Workers", 8, cfg.Defaults.Workers)
	assertBoolPtr(t, "Calibration.Skip", true, cfg.Calibration.Skip)
	assertEqualInt(t, "Server.Port", 9000, cfg.Server.Port)
	assertEqual(t, "Server.Host", "0.0.0.0", cfg.Server.Host)
	assertBoolPtr(t, "Server.NoBrowser", true, cfg.Server.NoBrowser)

	f, err := cfg.Fractions()
	if err != nil {
		t.Fatalf("Fractions() error: %v", err)
	}
	if f != [4]float64{0.9, 0.7, 0.5, 0.3} {
		t.Errorf("Fractions() = %v, want [0.9 0.7 0.5 0.3]", f)
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "Dir", absDir, cfg.Dir)
	assertEqual(t, "Resolve(relative)", filepath.Join(absDir, "data/results.csv"), cfg.Resolve(cfg.Paths.Measurements))
	assertEqual(t, "Resolve(absolute)", "/etc/elex/weights.json", cfg.Resolve(cfg.Paths.Weights))
	assertEqual(t, "Resolve(empty)", "", cfg.Resolve(""))
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
defaults:
  reference: VGG16
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Overridden
	assertEqual(t, "Defaults.Reference", "VGG16", cfg.Defaults.Reference)

	// Defaults preserved
	assertEqual(t, "Paths.Measurements", DefaultMeasurements, cfg.Paths.Measurements)
	assertEqual(t, "Defaults.Task", DefaultTask, cfg.Defaults.Task)
	assertEqual(t, "Defaults.Mode", DefaultMode, cfg.Defaults.Mode)
	assertEqualInt(t, "Defaults.Workers", DefaultWorkers, cfg.Defaults.Workers)
	assertEqualInt(t, "Server.Port", DefaultServerPort, cfg.Server.Port)
	assertBoolPtr(t, "Server.NoBrowser", false, cfg.Server.NoBrowser)
	if len(cfg.Calibration.Fractions) != 4 {
		t.Errorf("Calibration.Fractions = %v, want the four defaults", cfg.Calibration.Fractions)
	}
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	defaults := New()
	assertEqual(t, "Defaults.Reference", defaults.Defaults.Reference, cfg.Defaults.Reference)
	assertEqual(t, "Defaults.Mode", defaults.Defaults.Mode, cfg.Defaults.Mode)
	assertEqualInt(t, "Server.Port", defaults.Server.Port, cfg.Server.Port)
	assertEqual(t, "Dir", "", cfg.Dir)
	assertEqual(t, "Resolve", "measurements.csv", cfg.Resolve(cfg.Paths.Measurements))
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
defaults:
  reference: [not valid yaml
    this is broken
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("Load() should return error for invalid YAML")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown task", content: "defaults:\n  task: finetuning\n"},
		{name: "unknown mode", content: "defaults:\n  mode: average\n"},
		{name: "unknown axis", content: "defaults:\n  x_axis: co2\n"},
		{name: "negative workers", content: "defaults:\n  workers: -2\n"},
		{name: "three fractions", content: "calibration:\n  fractions: [0.8, 0.6, 0.4]\n"},
		{name: "increasing fractions", content: "calibration:\n  fractions: [0.2, 0.4, 0.6, 0.8]\n"},
		{name: "port out of range", content: "server:\n  port: 70000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, FileName, tt.content)
			if _, err := Load(dir); err == nil {
				t.Fatal("Load() should reject the config")
			}
		})
	}
}

func TestLoad_ModeLabelsAreLenient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "defaults:\n  mode: Median_Pessimistic\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqual(t, "Defaults.Mode", "Median_Pessimistic", cfg.Defaults.Mode)
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, `
defaults:
  reference: found-it
`)

	child := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(child)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Defaults.Reference", "found-it", cfg.Defaults.Reference)
	// Other defaults still populated
	assertEqual(t, "Defaults.Mode", DefaultMode, cfg.Defaults.Mode)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "Dir", absRoot, cfg.Dir)
}

func TestLoad_StopsAfterMaxLevels(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "defaults:\n  reference: too-far\n")

	parts := []string{root}
	for i := range maxLevels {
		parts = append(parts, string(rune('a'+i)))
	}
	deep := filepath.Join(parts...)
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(deep)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assertEqual(t, "Defaults.Reference", DefaultReference, cfg.Defaults.Reference)
}

func TestBoolPointerFields(t *testing.T) {
	t.Run("defaults preserved when not set in YAML", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, FileName, `
server:
  port: 9001
`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertBoolPtr(t, "Server.NoBrowser", false, cfg.Server.NoBrowser)
		assertBoolPtr(t, "Calibration.Skip", false, cfg.Calibration.Skip)
	})

	t.Run("explicitly false", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, FileName, `
calibration:
  skip: false
server:
  no_browser: false
`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertBoolPtr(t, "Server.NoBrowser", false, cfg.Server.NoBrowser)
		assertBoolPtr(t, "Calibration.Skip", false, cfg.Calibration.Skip)
	})
}

// --- test helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertBoolPtr(t *testing.T, field string, want bool, got *bool) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want *%v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}
