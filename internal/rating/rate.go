package rating

import (
	"errors"
	"strings"

	"github.com/energylabel/elex/internal/models"
)

// Settings is the classification state a rating pass reads from.
type Settings struct {
	Boundaries BoundaryStore
	Weights    WeightStore
	Mode       Mode
}

// Rate runs the full pipeline for one model: index every applicable metric
// against reference, classify, attach weights and aggregate. reference may
// be nil when the environment has no reference model, in which case every
// present measurement gets an undefined index.
//
// Per-metric indexing problems are returned as *IndexError values and do not
// stop the other metrics. Problems caused by the reference carry no Model,
// since they hit every model of the environment alike. A summary without any rating gets a nil Compound.
func Rate(m *models.Measurements, reference *models.Measurements, s Settings) (models.Summary, []error) {
	sum := models.Summary{
		Name:        m.Model,
		Environment: m.Environment,
		Task:        m.Task,
	}

	var errs []error
	for _, id := range m.Task.Metrics() {
		res := models.MetricResult{
			Value:  m.Values[id],
			Weight: s.Weights.Get(id),
		}

		var ref *float64
		if reference != nil {
			ref = reference.Values[id]
		}
		idx, err := Index(m.Values[id], ref, id.Metric().Direction)
		if err != nil {
			ie := &IndexError{Environment: m.Environment, Metric: id, Reason: reasonOf(err)}
			if ValidReference(ref) {
				ie.Model = m.Model
			}
			errs = append(errs, ie)
		}
		res.Index = idx

		b, _ := s.Boundaries.Get(id)
		res.Rating = Classify(idx, b)
		sum.Results[id] = res
	}

	if r, err := Compound(&sum, s.Mode); err == nil {
		sum.Compound = &r
	} else if !errors.Is(err, ErrNoRatableMetrics) {
		errs = append(errs, err)
	}
	return sum, errs
}

// Reclassify recomputes ratings, weights and the compound rating of an
// already indexed summary. It gives the same result as Rate on the original
// measurements with the same settings.
func Reclassify(sum models.Summary, s Settings) models.Summary {
	for _, id := range sum.Task.Metrics() {
		res := sum.Results[id]
		b, _ := s.Boundaries.Get(id)
		res.Rating = Classify(res.Index, b)
		res.Weight = s.Weights.Get(id)
		sum.Results[id] = res
	}
	sum.Compound = nil
	if r, err := Compound(&sum, s.Mode); err == nil {
		sum.Compound = &r
	}
	return sum
}

func reasonOf(err error) string {
	return strings.TrimPrefix(err.Error(), ErrIndexUndefined.Error()+": ")
}
