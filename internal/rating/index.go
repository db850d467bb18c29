// Package rating implements the energy-label rating engine: indexing raw
// measurements against a reference model, classifying indices into A..E bins,
// aggregating bins into a compound rating, and calibrating bin boundaries
// from an observed index distribution.
//
// Everything in this package is a pure function of its inputs.
package rating

import (
	"fmt"
	"math"

	"github.com/energylabel/elex/internal/models"
)

// Index normalises value against the reference model's value of the same
// metric so that 1 means parity and larger always means better:
//
//	higher-is-better: value / reference
//	lower-is-better:  reference / value
//
// A nil value yields a nil index and no error. A nil, zero or non-finite
// reference, or a lower-is-better value that is not positive, yields an error
// wrapping ErrIndexUndefined.
func Index(value, reference *float64, dir models.Direction) (*float64, error) {
	if value == nil {
		return nil, nil
	}
	if reference == nil {
		return nil, fmt.Errorf("%w: reference value missing", ErrIndexUndefined)
	}
	if !ValidReference(reference) {
		return nil, fmt.Errorf("%w: reference value %v", ErrIndexUndefined, *reference)
	}
	ref := *reference
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: value %v", ErrIndexUndefined, v)
	}

	var idx float64
	if dir == models.HigherIsBetter {
		idx = v / ref
	} else {
		if v <= 0 {
			return nil, fmt.Errorf("%w: cannot invert value %v", ErrIndexUndefined, v)
		}
		idx = ref / v
	}
	return &idx, nil
}

// ValidReference reports whether ref can serve as the denominator or
// numerator of an index.
func ValidReference(ref *float64) bool {
	return ref != nil && *ref != 0 && !math.IsNaN(*ref) && !math.IsInf(*ref, 0)
}

// RealValue maps an index back onto the raw value axis of a metric for the
// given reference value. It is the inverse of Index.
func RealValue(index, reference float64, dir models.Direction) float64 {
	if dir == models.HigherIsBetter {
		return index * reference
	}
	if index == 0 {
		return math.Inf(1)
	}
	return reference / index
}
