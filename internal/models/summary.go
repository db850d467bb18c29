package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rating is a letter-grade bin: 0 is A (best), 4 is E (worst).
type Rating int

const (
	RatingA Rating = iota
	RatingB
	RatingC
	RatingD
	RatingE

	// RatingCount is the number of bins.
	RatingCount = 5
)

var letters = [RatingCount]string{"A", "B", "C", "D", "E"}

// Valid reports whether r is one of the five bins.
func (r Rating) Valid() bool {
	return r >= RatingA && r <= RatingE
}

// Letter returns "A".."E", or "?" for values outside the bin range.
func (r Rating) Letter() string {
	if !r.Valid() {
		return "?"
	}
	return letters[r]
}

func (r Rating) String() string {
	return r.Letter()
}

// ParseRating reads a bin letter, in either case.
func ParseRating(s string) (Rating, error) {
	letter := strings.ToUpper(strings.TrimSpace(s))
	for i, l := range letters {
		if l == letter {
			return Rating(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rating %q: must be one of A, B, C, D, E", s)
}

// Measurements holds the raw values of one model in one environment.
// A nil entry means the metric was not measured, which is different from 0.
type Measurements struct {
	Task        Task
	Environment string
	Model       string
	Values      [MetricCount]*float64
}

// Value returns the measured value of id and whether it is present.
func (m *Measurements) Value(id MetricID) (float64, bool) {
	if v := m.Values[id]; v != nil {
		return *v, true
	}
	return 0, false
}

// MetricResult is the per-metric record of a summary. Value, Index and Rating
// are nil when the underlying measurement (or its index) is absent.
type MetricResult struct {
	Value  *float64 `json:"value"`
	Index  *float64 `json:"index"`
	Rating *Rating  `json:"rating"`
	Weight float64  `json:"weight"`
}

// Summary is the rated view of one model in one environment for one task.
// Results is indexed by MetricID; entries for metrics that do not apply to
// Task are always zero.
type Summary struct {
	Name        string
	Environment string
	Task        Task
	Results     [MetricCount]MetricResult
	// Compound is nil when no metric could be rated.
	Compound *Rating
}

// Result returns the record for id.
func (s *Summary) Result(id MetricID) MetricResult {
	return s.Results[id]
}

type summaryJSON struct {
	Name        string                  `json:"name"`
	Environment string                  `json:"environment"`
	Task        Task                    `json:"task"`
	Compound    *Rating                 `json:"compound_rating"`
	Metrics     map[string]MetricResult `json:"metrics"`
}

// MarshalJSON writes only the metrics applicable to the summary's task,
// keyed by metric key.
func (s Summary) MarshalJSON() ([]byte, error) {
	out := summaryJSON{
		Name:        s.Name,
		Environment: s.Environment,
		Task:        s.Task,
		Compound:    s.Compound,
		Metrics:     make(map[string]MetricResult),
	}
	for _, id := range s.Task.Metrics() {
		out.Metrics[id.String()] = s.Results[id]
	}
	return json.Marshal(out)
}

func (s *Summary) UnmarshalJSON(data []byte) error {
	var in summaryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Summary{
		Name:        in.Name,
		Environment: in.Environment,
		Task:        in.Task,
		Compound:    in.Compound,
	}
	for key, res := range in.Metrics {
		id, err := ParseMetricID(key)
		if err != nil {
			return fmt.Errorf("summary %s/%s: %w", in.Name, in.Environment, err)
		}
		s.Results[id] = res
	}
	return nil
}
