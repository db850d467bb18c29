package codec

import (
	"fmt"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"github.com/go-viper/mapstructure/v2"
)

// EncodeBoundaries writes every explicitly set entry of s. Cut points are
// written in their shortest exact form, so DecodeBoundaries restores s
// bit for bit.
func EncodeBoundaries(s rating.BoundaryStore, format Format) ([]byte, error) {
	return encode(s.Metrics(), func(id models.MetricID) any {
		b, _ := s.Get(id)
		return b[:]
	}, format, true)
}

// DecodeBoundaries reads a boundaries payload. Entries that are not four
// finite, strictly decreasing numbers are rejected rather than repaired.
// The returned store holds the valid entries only; the error is non-nil only
// when the payload as a whole cannot be read.
func DecodeBoundaries(data []byte) (rating.BoundaryStore, Report, error) {
	entries, err := parseEntries(data)
	if err != nil {
		return rating.BoundaryStore{}, Report{}, err
	}

	var (
		store  rating.BoundaryStore
		report Report
		seen   = make(map[models.MetricID]bool)
	)
	for _, e := range entries {
		id, ok := lookup(&report, seen, e.key)
		if !ok {
			continue
		}
		if reason := validateEntry(boundariesEntrySchema, e.value); reason != "" {
			report.reject(e.key, reason, false)
			continue
		}
		var cuts []float64
		if err := mapstructure.Decode(e.value, &cuts); err != nil {
			report.reject(e.key, fmt.Sprintf("decoding cut points: %v", err), false)
			continue
		}
		var b rating.Boundaries
		copy(b[:], cuts)
		next, err := store.With(id, b)
		if err != nil {
			report.reject(e.key, err.Error(), false)
			continue
		}
		store = next
		report.Applied = append(report.Applied, id)
	}
	return store, report, nil
}
