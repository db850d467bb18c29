package session

import "time"

// EventType identifies the kind of journal event.
type EventType string

const (
	EventSessionStart     EventType = "session_start"
	EventModeChanged      EventType = "mode_changed"
	EventReferenceChanged EventType = "reference_changed"
	EventTaskChanged      EventType = "task_changed"
	EventAxesChanged      EventType = "axes_changed"
	EventBoundaries       EventType = "boundaries_replaced"
	EventWeights          EventType = "weights_replaced"
	EventCalibrated       EventType = "calibrated"
	EventImported         EventType = "imported"
)

// Event is a single timestamped entry in a session journal. Version is the
// configuration version the change produced.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Version   uint64         `json:"version"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, version uint64, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Version:   version,
		Data:      data,
	}
}

// SessionStartData returns event data for a session start.
func SessionStartData(cfg Config, summaries int) map[string]any {
	return map[string]any{
		"reference": cfg.Reference,
		"task":      string(cfg.Task),
		"mode":      cfg.Mode.String(),
		"summaries": summaries,
	}
}

// ChangeData returns event data for a single changed setting.
func ChangeData(from, to string) map[string]any {
	return map[string]any{
		"from": from,
		"to":   to,
	}
}

// MetricsData returns event data naming the metrics a change touched.
func MetricsData(applied []string, rejected []string) map[string]any {
	d := map[string]any{
		"applied": applied,
	}
	if len(rejected) > 0 {
		d["rejected"] = rejected
	}
	return d
}
