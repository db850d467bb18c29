package codec

import (
	"fmt"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"github.com/go-viper/mapstructure/v2"
)

// EncodeWeights writes every explicitly set entry of s.
func EncodeWeights(s rating.WeightStore, format Format) ([]byte, error) {
	return encode(s.Metrics(), func(id models.MetricID) any {
		return s.Get(id)
	}, format, false)
}

// DecodeWeights reads a weights payload into the map of valid entries.
// The error is non-nil only when the payload as a whole cannot be read.
func DecodeWeights(data []byte) (map[models.MetricID]float64, Report, error) {
	entries, err := parseEntries(data)
	if err != nil {
		return nil, Report{}, err
	}

	var (
		weights = make(map[models.MetricID]float64)
		report  Report
		seen    = make(map[models.MetricID]bool)
	)
	for _, e := range entries {
		id, ok := lookup(&report, seen, e.key)
		if !ok {
			continue
		}
		if reason := validateEntry(weightEntrySchema, e.value); reason != "" {
			report.reject(e.key, reason, false)
			continue
		}
		var w float64
		if err := mapstructure.Decode(e.value, &w); err != nil {
			report.reject(e.key, fmt.Sprintf("decoding weight: %v", err), false)
			continue
		}
		if err := rating.ValidateWeight(w); err != nil {
			report.reject(e.key, err.Error(), false)
			continue
		}
		weights[id] = w
		report.Applied = append(report.Applied, id)
	}
	return weights, report, nil
}

// DecodeWeightStore decodes a weights payload into a store of its valid entries.
func DecodeWeightStore(data []byte) (rating.WeightStore, Report, error) {
	weights, report, err := DecodeWeights(data)
	if err != nil {
		return rating.WeightStore{}, report, err
	}
	store, err := rating.NewWeightStore(weights)
	return store, report, err
}
