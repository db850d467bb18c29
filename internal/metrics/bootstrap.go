package metrics

import (
	"math"
	"math/rand/v2"
	"slices"
)

// BootstrapIterations is the number of resamples drawn by BootstrapMedianCI.
const BootstrapIterations = 2000

// BootstrapMedianCI estimates a confidence interval for the median of values
// with the percentile bootstrap. The resampling source is seeded so the same
// corpus always yields the same interval. Fewer than two values give a
// degenerate interval at the median.
func BootstrapMedianCI(values []float64, level float64, seed uint64) (lo, hi float64) {
	n := len(values)
	if n < 2 {
		m := Median(values)
		return m, m
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	medians := make([]float64, BootstrapIterations)
	sample := make([]float64, n)
	for i := range medians {
		for j := range sample {
			sample[j] = values[rng.IntN(n)]
		}
		medians[i] = Median(sample)
	}
	slices.Sort(medians)

	alpha := 1 - level
	loIdx := int(math.Floor(alpha / 2 * BootstrapIterations))
	hiIdx := min(int(math.Floor((1-alpha/2)*BootstrapIterations)), BootstrapIterations-1)
	return medians[loIdx], medians[hiIdx]
}
