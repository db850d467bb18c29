package rating

import (
	"fmt"
	"math"

	"github.com/energylabel/elex/internal/models"
)

// CutCount is the number of cut points per metric.
const CutCount = models.RatingCount - 1

// Boundaries holds the four cut points of one metric on the index axis,
// strictly decreasing: b[0] > b[1] > b[2] > b[3].
type Boundaries [CutCount]float64

// DefaultBoundaries are used for metrics that have never been calibrated.
var DefaultBoundaries = Boundaries{1.25, 1.0, 0.75, 0.5}

// Validate checks that every cut point is finite and that they strictly decrease.
func (b Boundaries) Validate() error {
	for i, c := range b {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: cut point %d is %v", ErrInvalidBoundaries, i, c)
		}
		if i > 0 && c >= b[i-1] {
			return fmt.Errorf("%w: cut points must strictly decrease, got %v", ErrInvalidBoundaries, b)
		}
	}
	return nil
}

// Classify returns the bin of index: A when index exceeds b[0], E when it is
// at or below b[3]. Any real value maps to a bin.
func (b Boundaries) Classify(index float64) models.Rating {
	for i, c := range b {
		if index > c {
			return models.Rating(i)
		}
	}
	return models.RatingE
}

// Interval returns the index range (lower, upper] covered by bin r. The outer
// bins are open towards ±Inf.
func (b Boundaries) Interval(r models.Rating) (lower, upper float64) {
	upper = math.Inf(1)
	if r > models.RatingA {
		upper = b[r-1]
	}
	lower = math.Inf(-1)
	if r < models.RatingE {
		lower = b[r]
	}
	return lower, upper
}

// Classify maps a possibly absent index to a possibly absent rating.
func Classify(index *float64, b Boundaries) *models.Rating {
	if index == nil {
		return nil
	}
	r := b.Classify(*index)
	return &r
}

// BoundaryStore maps each metric to its boundaries. The zero value has no
// entries; lookups for missing metrics fall back to DefaultBoundaries.
//
// A BoundaryStore is a value: With and Merge return modified copies and never
// change the receiver, so a store handed to a rating pass stays consistent.
type BoundaryStore struct {
	set  [models.MetricCount]bool
	cuts [models.MetricCount]Boundaries
}

// NewBoundaryStore builds a store from a map, validating every entry.
func NewBoundaryStore(entries map[models.MetricID]Boundaries) (BoundaryStore, error) {
	var s BoundaryStore
	for id, b := range entries {
		if !id.Valid() {
			return BoundaryStore{}, fmt.Errorf("%w: %d", ErrUnknownMetric, int(id))
		}
		if err := b.Validate(); err != nil {
			return BoundaryStore{}, fmt.Errorf("%s: %w", id, err)
		}
		s.set[id] = true
		s.cuts[id] = b
	}
	return s, nil
}

// Get returns the boundaries of id and whether they were explicitly set.
func (s BoundaryStore) Get(id models.MetricID) (Boundaries, bool) {
	if !id.Valid() || !s.set[id] {
		return DefaultBoundaries, false
	}
	return s.cuts[id], true
}

// With returns a copy of s with id set to b.
func (s BoundaryStore) With(id models.MetricID, b Boundaries) (BoundaryStore, error) {
	if !id.Valid() {
		return s, fmt.Errorf("%w: %d", ErrUnknownMetric, int(id))
	}
	if err := b.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", id, err)
	}
	s.set[id] = true
	s.cuts[id] = b
	return s, nil
}

// Merge returns a copy of s overlaid with every explicitly set entry of other.
func (s BoundaryStore) Merge(other BoundaryStore) BoundaryStore {
	for i := range other.set {
		if other.set[i] {
			s.set[i] = true
			s.cuts[i] = other.cuts[i]
		}
	}
	return s
}

// Metrics returns the explicitly set metrics in catalog order.
func (s BoundaryStore) Metrics() []models.MetricID {
	var ids []models.MetricID
	for i, ok := range s.set {
		if ok {
			ids = append(ids, models.MetricID(i))
		}
	}
	return ids
}

// Len returns the number of explicitly set metrics.
func (s BoundaryStore) Len() int {
	n := 0
	for _, ok := range s.set {
		if ok {
			n++
		}
	}
	return n
}

// Map returns the explicitly set entries.
func (s BoundaryStore) Map() map[models.MetricID]Boundaries {
	m := make(map[models.MetricID]Boundaries)
	for _, id := range s.Metrics() {
		m[id] = s.cuts[id]
	}
	return m
}
