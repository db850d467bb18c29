package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
)

const maxNameWidth = 28

// table collects rows of cells and writes them with aligned columns.
// Cells may carry ANSI colour; alignment uses display width.
type table struct {
	header []string
	rows   [][]string
	right  map[int]bool
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer, p Printer) error {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			widths[i] = max(widths[i], visibleWidth(c))
		}
	}

	var b strings.Builder
	line := func(cells []string, style func(string) string) {
		for i, c := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			if t.right[i] {
				c = padLeft(c, widths[i])
			} else if i < len(cells)-1 {
				c = padRight(c, widths[i])
			}
			b.WriteString(style(c))
		}
		b.WriteString("\n")
	}
	line(t.header, p.header)
	total := 0
	for _, wd := range widths {
		total += wd
	}
	b.WriteString(strings.Repeat("─", total+2*(len(widths)-1)))
	b.WriteString("\n")
	for _, row := range t.rows {
		line(row, func(s string) string { return s })
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Ratings writes one row per summary with the compound rating followed by
// the per-metric ratings of the task.
func (p Printer) Ratings(w io.Writer, task models.Task, summaries []models.Summary) error {
	ids := task.Metrics()
	t := &table{header: []string{"MODEL", "ENVIRONMENT", "RATING"}}
	for _, id := range ids {
		t.header = append(t.header, strings.ToUpper(id.String()))
	}
	for i := range summaries {
		s := &summaries[i]
		row := []string{
			truncate(s.Name, maxNameWidth),
			truncate(s.Environment, maxNameWidth),
			p.Badge(s.Compound),
		}
		for _, id := range ids {
			row = append(row, p.Badge(s.Results[id].Rating))
		}
		t.add(row...)
	}
	return t.write(w, p)
}

// Boundaries writes the cut points of every metric in ids. Metrics without
// an explicit entry are marked as using the defaults.
func (p Printer) Boundaries(w io.Writer, store rating.BoundaryStore, ids []models.MetricID) error {
	t := &table{
		header: []string{"METRIC", "A|B", "B|C", "C|D", "D|E", "SOURCE"},
		right:  map[int]bool{1: true, 2: true, 3: true, 4: true},
	}
	for _, id := range ids {
		b, ok := store.Get(id)
		source := "set"
		if !ok {
			source = "default"
		}
		row := []string{id.String()}
		for _, c := range b {
			row = append(row, strconv.FormatFloat(c, 'g', 6, 64))
		}
		t.add(append(row, source)...)
	}
	return t.write(w, p)
}

// Histogram writes one bar per rating bin.
func (p Printer) Histogram(w io.Writer, counts [models.RatingCount]int) error {
	var b strings.Builder
	for r := range models.RatingCount {
		rt := models.Rating(r)
		fmt.Fprintf(&b, "%s %s %d\n", p.Badge(&rt), strings.Repeat("█", counts[r]), counts[r])
	}
	_, err := io.WriteString(w, b.String())
	return err
}
