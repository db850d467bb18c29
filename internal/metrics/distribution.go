package metrics

import (
	"math"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
)

// Distribution summarises the index corpus of one metric together with how
// the current boundaries split it into bins.
type Distribution struct {
	Metric     models.MetricID         `json:"metric"`
	Count      int                     `json:"count"`
	Distinct   int                     `json:"distinct"`
	Min        float64                 `json:"min"`
	Max        float64                 `json:"max"`
	Mean       float64                 `json:"mean"`
	Median     float64                 `json:"median"`
	StdDev     float64                 `json:"std_dev"`
	MeanCI95   [2]float64              `json:"mean_ci95"`
	MedianCI95 [2]float64              `json:"median_ci95"`
	Boundaries rating.Boundaries       `json:"boundaries"`
	Population [models.RatingCount]int `json:"population"`

	// Calibratable reports whether the corpus has enough distinct values to
	// derive boundaries from.
	Calibratable bool `json:"calibratable"`
}

// Describe computes the distribution of an index corpus. Non-finite values
// are ignored.
func Describe(id models.MetricID, corpus []float64, b rating.Boundaries) Distribution {
	values := make([]float64, 0, len(corpus))
	for _, v := range corpus {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			values = append(values, v)
		}
	}

	d := Distribution{
		Metric:     id,
		Count:      len(values),
		Distinct:   Distinct(values),
		Boundaries: b,
		Population: rating.Population(values, b),
	}
	d.Calibratable = d.Distinct >= 2
	if len(values) == 0 {
		return d
	}

	d.Min, d.Max = values[0], values[0]
	for _, v := range values[1:] {
		d.Min = min(d.Min, v)
		d.Max = max(d.Max, v)
	}
	d.Mean = Mean(values)
	d.Median = Median(values)
	d.StdDev = StdDev(values)
	d.MeanCI95[0], d.MeanCI95[1] = ConfidenceInterval95(values)
	d.MedianCI95[0], d.MedianCI95[1] = BootstrapMedianCI(values, 0.95, uint64(id))
	return d
}
