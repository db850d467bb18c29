package render

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/energylabel/elex/internal/session"
)

// Timeline writes one line per journal event: time offset from the first
// event, configuration version, event type and its data as key=value pairs.
func (p Printer) Timeline(w io.Writer, events []session.Event) error {
	if len(events) == 0 {
		_, err := io.WriteString(w, "no events\n")
		return err
	}
	start := events[0].Timestamp
	t := &table{header: []string{"OFFSET", "VERSION", "EVENT", "DATA"}, right: map[int]bool{1: true}}
	for _, ev := range events {
		t.add(
			formatOffset(ev.Timestamp.Sub(start)),
			fmt.Sprintf("v%d", ev.Version),
			string(ev.Type),
			formatData(ev.Data),
		)
	}
	return t.write(w, p)
}

func formatOffset(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("+%dms", d.Milliseconds())
	}
	return "+" + d.Round(time.Millisecond).String()
}

func formatData(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, data[k]))
	}
	return strings.Join(parts, " ")
}
