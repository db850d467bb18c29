// Package dataset loads the measurement corpora that are rated by a session.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/energylabel/elex/internal/models"
)

// Key columns every measurement file must carry. All other columns are
// metric keys.
const (
	ColumnTask        = "task"
	ColumnEnvironment = "environment"
	ColumnModel       = "model"
)

// absentValues are cell contents that mean "not measured".
var absentValues = map[string]bool{"": true, "n.a.": true, "na": true, "null": true}

// LoadMeasurements reads a measurement CSV file. The first row is the header:
// task,environment,model followed by metric keys in any order.
func LoadMeasurements(path string) ([]models.Measurements, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return ReadMeasurements(f, path)
}

// ReadMeasurements parses measurement CSV from r. name is used in error
// messages. Unknown metric columns are skipped with a warning; empty cells are
// absent measurements; a cell that is not a finite number is an error naming
// its row and column.
func ReadMeasurements(r io.Reader, name string) ([]models.Measurements, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", name)
	}
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", name, err)
	}

	cols, err := parseHeader(header, name)
	if err != nil {
		return nil, err
	}

	type rowKey struct {
		task       models.Task
		env, model string
	}
	seen := make(map[rowKey]int)

	var out []models.Measurements
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: parse %s: %w", name, err)
		}
		line, _ := reader.FieldPos(0)

		m, err := cols.measurement(record)
		if err != nil {
			return nil, fmt.Errorf("csv: %s line %d: %w", name, line, err)
		}
		k := rowKey{m.Task, m.Environment, m.Model}
		if first, dup := seen[k]; dup {
			return nil, fmt.Errorf("csv: %s line %d: %s in %s (%s) already measured on line %d", name, line, m.Model, m.Environment, m.Task, first)
		}
		seen[k] = line
		out = append(out, m)
	}
	return out, nil
}

type metricColumn struct {
	index int
	id    models.MetricID
}

type columns struct {
	task, env, model int
	metrics          []metricColumn
	header           []string
}

func parseHeader(header []string, name string) (*columns, error) {
	cols := &columns{task: -1, env: -1, model: -1, header: header}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		switch key {
		case ColumnTask:
			cols.task = i
		case ColumnEnvironment:
			cols.env = i
		case ColumnModel:
			cols.model = i
		default:
			id, err := models.ParseMetricID(key)
			if err != nil {
				slog.Warn("Ignoring unknown measurement column", "file", name, "column", h)
				continue
			}
			cols.metrics = append(cols.metrics, metricColumn{index: i, id: id})
		}
	}

	var missing []string
	if cols.task < 0 {
		missing = append(missing, ColumnTask)
	}
	if cols.env < 0 {
		missing = append(missing, ColumnEnvironment)
	}
	if cols.model < 0 {
		missing = append(missing, ColumnModel)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv: %s is missing required columns: %s", name, strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c *columns) measurement(record []string) (models.Measurements, error) {
	task, err := models.ParseTask(record[c.task])
	if err != nil {
		return models.Measurements{}, err
	}
	m := models.Measurements{
		Task:        task,
		Environment: strings.TrimSpace(record[c.env]),
		Model:       strings.TrimSpace(record[c.model]),
	}
	if m.Environment == "" || m.Model == "" {
		return models.Measurements{}, fmt.Errorf("environment and model must not be empty")
	}

	for _, col := range c.metrics {
		cell := strings.TrimSpace(record[col.index])
		if absentValues[strings.ToLower(cell)] {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Measurements{}, fmt.Errorf("column %q: %q is not a finite number", c.header[col.index], cell)
		}
		m.Values[col.id] = &v
	}
	return m, nil
}

// WriteMeasurements writes ms as CSV with one column per catalog metric.
// Absent measurements are written as empty cells.
func WriteMeasurements(w io.Writer, ms []models.Measurements) error {
	writer := csv.NewWriter(w)
	header := []string{ColumnTask, ColumnEnvironment, ColumnModel}
	for _, id := range models.AllMetrics() {
		header = append(header, id.String())
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, m := range ms {
		record := []string{string(m.Task), m.Environment, m.Model}
		for _, id := range models.AllMetrics() {
			cell := ""
			if v, ok := m.Value(id); ok {
				cell = strconv.FormatFloat(v, 'g', -1, 64)
			}
			record = append(record, cell)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
