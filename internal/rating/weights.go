package rating

import (
	"fmt"
	"math"

	"github.com/energylabel/elex/internal/models"
)

// DefaultWeight is the weight of every metric that was never adjusted, so
// that by default all metrics contribute equally.
const DefaultWeight = 1.0

// ValidateWeight checks that w is a finite number in [0, 1].
func ValidateWeight(w float64) error {
	if math.IsNaN(w) || w < 0 || w > 1 {
		return fmt.Errorf("%w: %v is outside [0, 1]", ErrInvalidWeight, w)
	}
	return nil
}

// WeightStore maps each metric to its aggregation weight. Like BoundaryStore
// it is a value type; updates return a new store.
type WeightStore struct {
	set     [models.MetricCount]bool
	weights [models.MetricCount]float64
}

// NewWeightStore builds a store from a map, validating every entry.
func NewWeightStore(entries map[models.MetricID]float64) (WeightStore, error) {
	return WeightStore{}.UpdateAll(entries)
}

// Get returns the weight of id, DefaultWeight when it was never set.
func (s WeightStore) Get(id models.MetricID) float64 {
	if !id.Valid() || !s.set[id] {
		return DefaultWeight
	}
	return s.weights[id]
}

// IsSet reports whether id carries an explicit weight.
func (s WeightStore) IsSet(id models.MetricID) bool {
	return id.Valid() && s.set[id]
}

// Update returns a copy of s with the weight of a single metric replaced.
func (s WeightStore) Update(weight float64, id models.MetricID) (WeightStore, error) {
	if !id.Valid() {
		return s, fmt.Errorf("%w: %d", ErrUnknownMetric, int(id))
	}
	if err := ValidateWeight(weight); err != nil {
		return s, fmt.Errorf("%s: %w", id, err)
	}
	s.set[id] = true
	s.weights[id] = weight
	return s, nil
}

// UpdateAll returns a copy of s with every entry of weights applied. Either
// all entries are applied or, on the first invalid one, none.
func (s WeightStore) UpdateAll(weights map[models.MetricID]float64) (WeightStore, error) {
	next := s
	for id, w := range weights {
		var err error
		if next, err = next.Update(w, id); err != nil {
			return s, err
		}
	}
	return next, nil
}

// Metrics returns the explicitly set metrics in catalog order.
func (s WeightStore) Metrics() []models.MetricID {
	var ids []models.MetricID
	for i, ok := range s.set {
		if ok {
			ids = append(ids, models.MetricID(i))
		}
	}
	return ids
}

// Map returns the explicitly set entries.
func (s WeightStore) Map() map[models.MetricID]float64 {
	m := make(map[models.MetricID]float64)
	for _, id := range s.Metrics() {
		m[id] = s.weights[id]
	}
	return m
}
