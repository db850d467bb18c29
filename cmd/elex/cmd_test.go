package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/energylabel/elex/internal/jsonrpc"
	"github.com/energylabel/elex/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// With default boundaries and weights the fixture rates:
// A100 MobileNetV2 A, A100 ResNet101 C, A100 VGG16 C, CPU ResNet101 C.
const fixtureCSV = `task,environment,model,inference_power_draw,top1_val,unknown_column
inference,A100,ResNet101,100,77,x
inference,A100,MobileNetV2,50,71.9,x
inference,A100,VGG16,200,71.5,x
inference,CPU,ResNet101,400,77,x
`

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// writeFixture creates a project directory holding the fixture corpus.
func writeFixture(t *testing.T) (dir, csvPath string) {
	t.Helper()
	dir = t.TempDir()
	csvPath = filepath.Join(dir, "measurements.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(fixtureCSV), 0o644))
	return dir, csvPath
}

func runCLI(t *testing.T, projectDir, stdin string, args ...string) cliResult {
	t.Helper()
	old := slog.Default()
	t.Cleanup(func() { slog.SetDefault(old) })

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--project", projectDir}, args...))
	err := cmd.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func decodeRate(t *testing.T, out string) map[string]any {
	t.Helper()
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	return report
}

func compoundOf(t *testing.T, report map[string]any, env, model string) float64 {
	t.Helper()
	for _, s := range report["summaries"].([]any) {
		sum := s.(map[string]any)
		if sum["environment"] == env && sum["name"] == model {
			return sum["compound_rating"].(float64)
		}
	}
	t.Fatalf("no summary for %s in %s", model, env)
	return 0
}

func TestRate_Table(t *testing.T) {
	dir, csvPath := writeFixture(t)
	res := runCLI(t, dir, "", "rate", csvPath, "--no-calibrate")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
	require.Len(t, lines, 6, res.stdout)
	assert.Contains(t, lines[0], "MODEL")
	assert.Contains(t, lines[0], "INFERENCE_POWER_DRAW")
	assert.Contains(t, res.stdout, "MobileNetV2")
	assert.Contains(t, res.stdout, "CPU")
}

func TestRate_JSON(t *testing.T) {
	dir, csvPath := writeFixture(t)
	res := runCLI(t, dir, "", "rate", csvPath, "--no-calibrate", "--format", "json")
	require.NoError(t, res.err)

	report := decodeRate(t, res.stdout)
	assert.Len(t, report["summaries"], 4)
	assert.Equal(t, 0.0, compoundOf(t, report, "A100", "MobileNetV2"))
	assert.Equal(t, 2.0, compoundOf(t, report, "A100", "ResNet101"))
	assert.Equal(t, 2.0, compoundOf(t, report, "A100", "VGG16"))

	cfg := report["config"].(map[string]any)
	assert.Equal(t, "optimistic median", cfg["mode"])
	assert.Equal(t, "ResNet101", cfg["reference"])
}

func TestRate_ModeAndEnvironmentFlags(t *testing.T) {
	dir, csvPath := writeFixture(t)
	res := runCLI(t, dir, "", "rate", csvPath, "--no-calibrate", "-f", "json", "--env", "A100", "--mode", "worst")
	require.NoError(t, res.err)

	report := decodeRate(t, res.stdout)
	assert.Len(t, report["summaries"], 3)
	assert.Equal(t, 2.0, compoundOf(t, report, "A100", "MobileNetV2"))
	assert.Equal(t, 4.0, compoundOf(t, report, "A100", "VGG16"))
}

func TestRate_Errors(t *testing.T) {
	dir, csvPath := writeFixture(t)

	res := runCLI(t, dir, "", "rate", csvPath, "--env", "TPU")
	assert.ErrorIs(t, res.err, session.ErrUnknownEnvironment)

	res = runCLI(t, dir, "", "rate", csvPath, "--format", "xml")
	assert.ErrorContains(t, res.err, "unsupported format")

	res = runCLI(t, dir, "", "rate", csvPath, "--fail-below", "F")
	assert.ErrorContains(t, res.err, "--fail-below")

	res = runCLI(t, dir, "", "rate", filepath.Join(dir, "missing.csv"))
	assert.Error(t, res.err)

	res = runCLI(t, dir, "", "rate", csvPath, "--mode", "loudest")
	assert.Error(t, res.err)
}

func TestRate_FailBelow(t *testing.T) {
	dir, csvPath := writeFixture(t)

	res := runCLI(t, dir, "", "rate", csvPath, "--no-calibrate", "--fail-below", "B")
	var belowErr *RatingBelowThresholdError
	require.True(t, errors.As(res.err, &belowErr), "got %v", res.err)
	assert.Contains(t, belowErr.Message, "3 model(s)")
	assert.Contains(t, belowErr.Message, "VGG16 (A100): C")
	assert.NotEmpty(t, res.stdout, "ratings are printed before the threshold check")

	res = runCLI(t, dir, "", "rate", csvPath, "--no-calibrate", "--fail-below", "c")
	assert.NoError(t, res.err)
}

func TestRate_ProjectConfig(t *testing.T) {
	dir, _ := writeFixture(t)
	cfg := `paths:
  measurements: measurements.csv
defaults:
  mode: best
calibration:
  skip: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".elex.yaml"), []byte(cfg), 0o644))

	res := runCLI(t, dir, "", "rate", "-f", "json")
	require.NoError(t, res.err)
	report := decodeRate(t, res.stdout)
	assert.Equal(t, "best", report["config"].(map[string]any)["mode"])
	assert.Equal(t, 0.0, compoundOf(t, report, "A100", "MobileNetV2"))
	assert.Equal(t, 2.0, compoundOf(t, report, "CPU", "ResNet101"))

	// Flags win over the config file.
	res = runCLI(t, dir, "", "rate", "-f", "json", "--mode", "worst")
	require.NoError(t, res.err)
	assert.Equal(t, "worst", decodeRate(t, res.stdout)["config"].(map[string]any)["mode"])
}

func TestRate_BoundariesAndWeightsFiles(t *testing.T) {
	dir, csvPath := writeFixture(t)
	boundaries := filepath.Join(dir, "boundaries.yaml")
	require.NoError(t, os.WriteFile(boundaries, []byte("top1_val: [0.9, 0.8, 0.7, 0.6]\nnot_a_metric: [1, 2]\n"), 0o644))
	weights := filepath.Join(dir, "weights.json")
	require.NoError(t, os.WriteFile(weights, []byte(`{"inference_power_draw": 0}`), 0o644))

	res := runCLI(t, dir, "", "rate", csvPath, "--no-calibrate", "-f", "json",
		"--boundaries", boundaries, "--weights", weights)
	require.NoError(t, res.err)

	// Only top1_val counts and the reference sits above its A|B cut point.
	report := decodeRate(t, res.stdout)
	assert.Equal(t, 0.0, compoundOf(t, report, "A100", "ResNet101"))
	assert.Equal(t, 0.0, compoundOf(t, report, "A100", "MobileNetV2"))
}

func TestShow(t *testing.T) {
	dir, csvPath := writeFixture(t)

	res := runCLI(t, dir, "", "show", csvPath, "MobileNetV2", "--no-calibrate")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Name: MobileNetV2")
	assert.Contains(t, res.stdout, "(A100 Environment)")
	assert.Contains(t, res.stdout, "Final Rating A")
	assert.Contains(t, res.stdout, "n.a.")

	res = runCLI(t, dir, "", "show", csvPath, "ResNet101", "--no-calibrate")
	require.NoError(t, res.err)
	assert.Equal(t, 2, strings.Count(res.stdout, "Name: ResNet101"))

	res = runCLI(t, dir, "", "show", csvPath, "ResNet101", "--env", "CPU", "-f", "json", "--no-calibrate")
	require.NoError(t, res.err)
	var summaries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "CPU", summaries[0]["environment"])
}

func TestShow_UnknownModel(t *testing.T) {
	dir, csvPath := writeFixture(t)

	res := runCLI(t, dir, "", "show", csvPath, "AlexNet")
	assert.ErrorIs(t, res.err, session.ErrUnknownModel)

	res = runCLI(t, dir, "", "show", csvPath, "AlexNet", "--env", "A100")
	assert.ErrorIs(t, res.err, session.ErrSummaryNotFound)
}

func TestCalibrate(t *testing.T) {
	dir, csvPath := writeFixture(t)

	res := runCLI(t, dir, "", "calibrate", csvPath)
	require.NoError(t, res.err)
	var payload map[string][]float64
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &payload))
	require.Contains(t, payload, "inference_power_draw")
	assert.Len(t, payload["inference_power_draw"], 4)
	assert.Contains(t, res.stderr, "METRIC")
	assert.Contains(t, res.stderr, "SOURCE")
}

func TestCalibrate_OutputFile(t *testing.T) {
	dir, csvPath := writeFixture(t)
	out := filepath.Join(dir, "boundaries.yaml")

	res := runCLI(t, dir, "", "calibrate", csvPath, "--format", "yaml", "--output", out, "--fractions", "0.9,0.7,0.5,0.3")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.stderr, "Boundaries written to")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "inference_power_draw:")

	// The written payload can be fed back into rate.
	res = runCLI(t, dir, "", "rate", csvPath, "--no-calibrate", "--boundaries", out)
	assert.NoError(t, res.err)
}

func TestCalibrate_BadFlags(t *testing.T) {
	dir, csvPath := writeFixture(t)

	res := runCLI(t, dir, "", "calibrate", csvPath, "--fractions", "0.2,0.4,0.6,0.8")
	assert.Error(t, res.err)

	res = runCLI(t, dir, "", "calibrate", csvPath, "--format", "toml")
	assert.Error(t, res.err)
}

func TestStats(t *testing.T) {
	dir, csvPath := writeFixture(t)

	res := runCLI(t, dir, "", "stats", csvPath, "--no-calibrate", "--metric", "inference_power_draw")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Inference Power Draw / Batch [Ws]")
	assert.Contains(t, res.stdout, "count 4  distinct 3")
	assert.Contains(t, res.stdout, "lower is better")

	res = runCLI(t, dir, "", "stats", csvPath, "--no-calibrate")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "no defined indices")

	res = runCLI(t, dir, "", "stats", csvPath, "--metric", "train_time")
	assert.ErrorIs(t, res.err, session.ErrMetricNotApplicable)
}

func TestJournal(t *testing.T) {
	dir, csvPath := writeFixture(t)
	journal := filepath.Join(dir, "logs", "session.jsonl")

	res := runCLI(t, dir, "", "calibrate", csvPath, "--journal", journal)
	require.NoError(t, res.err)

	res = runCLI(t, dir, "", "journal", journal)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "session_start")
	assert.Contains(t, res.stdout, "calibrated")

	res = runCLI(t, dir, "", "journal", filepath.Join(dir, "missing.jsonl"))
	assert.Error(t, res.err)
}

func TestJournal_Directory(t *testing.T) {
	dir, csvPath := writeFixture(t)
	logs := filepath.Join(dir, "logs")
	require.NoError(t, os.Mkdir(logs, 0o755))

	res := runCLI(t, dir, "", "rate", csvPath, "--no-calibrate", "--journal", logs)
	require.NoError(t, res.err)

	files, err := filepath.Glob(filepath.Join(logs, "*-elex.jsonl"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	res = runCLI(t, dir, "", "journal", files[0])
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "session_start")
}

func TestServe_Stdio(t *testing.T) {
	dir, csvPath := writeFixture(t)
	requests := `{"jsonrpc":"2.0","method":"config.setMode","params":{"mode":"worst"},"id":1}` + "\n" +
		`{"jsonrpc":"2.0","method":"summary.get","params":{"environment":"A100","model":"VGG16"},"id":2}` + "\n"

	res := runCLI(t, dir, requests, "serve", csvPath, "--no-calibrate")
	require.NoError(t, res.err)
	assert.Contains(t, res.stderr, "JSON-RPC server running on stdio")

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 2)
	var resp jsonrpc.Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &resp))
	require.Nil(t, resp.Error)
	sum := resp.Result.(map[string]any)
	assert.Equal(t, 4.0, sum["compound_rating"])
}

func TestResolveTCPAddr(t *testing.T) {
	logger := slog.Default()
	tests := []struct {
		addr        string
		allowRemote bool
		want        string
	}{
		{addr: ":9000", want: "127.0.0.1:9000"},
		{addr: "9000", want: "127.0.0.1:9000"},
		{addr: "0.0.0.0:9000", want: "127.0.0.1:9000"},
		{addr: "localhost:9000", want: "localhost:9000"},
		{addr: ":9000", allowRemote: true, want: ":9000"},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveTCPAddr(tt.addr, tt.allowRemote, logger))
		})
	}
}

func TestFractionsValue(t *testing.T) {
	var v fractionsValue
	assert.Equal(t, "", v.String())
	assert.Equal(t, "fractions", v.Type())

	require.NoError(t, v.Set("0.9, 0.7,0.5,0.25"))
	assert.True(t, v.set)
	assert.Equal(t, "0.9,0.7,0.5,0.25", v.String())

	assert.Error(t, v.Set("0.9,0.7"))
	assert.Error(t, v.Set("0.9,0.7,0.5,x"))
	assert.Error(t, v.Set("0.9,0.9,0.5,0.2"))
	assert.Error(t, v.Set("1.5,0.7,0.5,0.2"))
}
