// Package metrics computes descriptive statistics over index corpora.
package metrics

import (
	"math"
	"slices"
)

// moments accumulates count, mean and the sum of squared deviations in one
// pass (Welford).
type moments struct {
	n    int
	mean float64
	m2   float64
}

func momentsOf(values []float64) moments {
	var m moments
	for _, v := range values {
		m.n++
		d := v - m.mean
		m.mean += d / float64(m.n)
		m.m2 += d * (v - m.mean)
	}
	return m
}

// Mean is the arithmetic mean, 0 for no values.
func Mean(values []float64) float64 {
	return momentsOf(values).mean
}

// Variance is the population variance, 0 for no values.
func Variance(values []float64) float64 {
	m := momentsOf(values)
	if m.n == 0 {
		return 0
	}
	return m.m2 / float64(m.n)
}

func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Median of values without reordering them; even counts average the two
// middle values. 0 for no values.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := slices.Sorted(slices.Values(values))
	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// ConfidenceInterval95 is the normal-approximation interval of the mean,
// using the sample standard deviation. With fewer than two values it
// collapses to the mean.
func ConfidenceInterval95(values []float64) (lo, hi float64) {
	m := momentsOf(values)
	if m.n < 2 {
		return m.mean, m.mean
	}
	margin := 1.96 * math.Sqrt(m.m2/float64(m.n-1)/float64(m.n))
	return m.mean - margin, m.mean + margin
}

// Distinct counts distinct values.
func Distinct(values []float64) int {
	set := make(map[float64]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return len(set)
}
