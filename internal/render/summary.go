package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/energylabel/elex/internal/models"
)

const (
	nameWidth   = 17
	envWidth    = 34
	metricWidth = 30
	valueWidth  = 13
)

// Summary writes the model panel text of s: a header line with name,
// environment and final rating, followed by one line per metric of the
// summary's task.
func (p Printer) Summary(w io.Writer, s *models.Summary) error {
	var b strings.Builder
	env := "(" + s.Environment + " Environment)"
	fmt.Fprintf(&b, "Name: %s %s - Final Rating %s\n",
		padRight(s.Name, nameWidth), padRight(env, envWidth), p.Badge(s.Compound))

	for _, id := range s.Task.Metrics() {
		res := s.Results[id]
		fmt.Fprintf(&b, "%s: %s - Index %s - Rating %s\n",
			padRight(id.Metric().Label(), metricWidth),
			padRight(formatValue(res.Value), valueWidth),
			formatIndex(res.Index),
			p.Badge(res.Rating))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Summaries writes every summary, separated by a blank line.
func (p Printer) Summaries(w io.Writer, summaries []models.Summary) error {
	for i := range summaries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := p.Summary(w, &summaries[i]); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*v, 'f', 3, 64)
}

func formatIndex(v *float64) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf("%4.2f", *v)
}
