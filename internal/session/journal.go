package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Journal records configuration changes of a session.
type Journal interface {
	Record(event Event) error
	Close() error
}

// JSONJournal writes events as newline-delimited JSON (NDJSON).
type JSONJournal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
	path string
}

// NewJSONJournal creates a journal that appends NDJSON to the given path.
// Parent directories are created automatically.
func NewJSONJournal(path string) (*JSONJournal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	return &JSONJournal{
		file: f,
		enc:  json.NewEncoder(f),
		path: path,
	}, nil
}

// Record writes a single event as one JSON line.
func (j *JSONJournal) Record(event Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(event)
}

// Close closes the underlying file.
func (j *JSONJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// Path returns the file path of the journal.
func (j *JSONJournal) Path() string {
	return j.path
}

// NopJournal discards all events.
type NopJournal struct{}

func (NopJournal) Record(Event) error { return nil }

func (NopJournal) Close() error { return nil }

// DefaultJournalPath returns a timestamped journal path inside dir.
func DefaultJournalPath(dir string) string {
	ts := time.Now().UTC().Format("20060102T150405Z")
	return filepath.Join(dir, fmt.Sprintf("%s-elex.jsonl", ts))
}

// ReadEvents parses all events from a journal file. Malformed lines are skipped.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return events, nil
}
