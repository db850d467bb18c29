// Package render writes rated summaries as terminal text: the per-model
// summary panel, rating tables, boundary tables and journal timelines.
package render

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/energylabel/elex/internal/models"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// NotAvailable is printed in place of absent values, indices and ratings.
const NotAvailable = "n.a."

var badgeColors = [models.RatingCount]lipgloss.Color{
	models.RatingA: "#00A651",
	models.RatingB: "#8CC63F",
	models.RatingC: "#FFDE00",
	models.RatingD: "#F7941D",
	models.RatingE: "#ED1C24",
}

// ColorEnabled reports whether w is a terminal that should receive ANSI
// colour. NO_COLOR disables colour regardless of the terminal.
func ColorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Printer renders with or without colour.
type Printer struct {
	Color bool
}

// NewPrinter returns a Printer that colours output only when w is a terminal.
func NewPrinter(w io.Writer) Printer {
	return Printer{Color: ColorEnabled(w)}
}

// Badge returns the letter of r, or n.a. for a nil rating. With colour the
// letter is drawn on its label colour.
func (p Printer) Badge(r *models.Rating) string {
	if r == nil || !r.Valid() {
		return NotAvailable
	}
	if !p.Color {
		return r.Letter()
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#000000")).
		Background(badgeColors[*r]).
		Render(r.Letter())
}

func (p Printer) header(s string) string {
	if !p.Color {
		return s
	}
	return lipgloss.NewStyle().Bold(true).Render(s)
}

// visibleWidth is the display width of s without ANSI sequences.
func visibleWidth(s string) int {
	return lipgloss.Width(s)
}

// padRight pads s with spaces so its display width reaches width. ANSI
// sequences do not count towards the width.
func padRight(s string, width int) string {
	sw := visibleWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// padLeft is padRight for right-aligned columns.
func padLeft(s string, width int) string {
	sw := visibleWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}

// truncate shortens s to width display cells, ending in "…" when cut.
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
