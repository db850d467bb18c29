package rating

import (
	"fmt"
	"math"
	"sort"

	"github.com/energylabel/elex/internal/models"
)

// Fractions are the target cumulative shares used by calibration: entry k is
// the share of the corpus that should lie at or below cut point k.
type Fractions [CutCount]float64

// DefaultFractions put roughly a fifth of the corpus into every bin.
var DefaultFractions = Fractions{0.8, 0.6, 0.4, 0.2}

// Validate checks that the fractions lie in (0, 1) and strictly decrease.
func (f Fractions) Validate() error {
	for i, v := range f {
		if math.IsNaN(v) || v <= 0 || v >= 1 {
			return fmt.Errorf("fraction %d is %v: must lie in (0, 1)", i, v)
		}
		if i > 0 && v >= f[i-1] {
			return fmt.Errorf("fractions must strictly decrease, got %v", f)
		}
	}
	return nil
}

// Calibrate derives boundaries from an index corpus so that classifying the
// same corpus puts roughly 1-f[0] of it into A, f[0]-f[1] into B and so on.
//
// Each bin gets floor(share*N) values and the few left over go one each to
// the worst bins, so A stays within 1/N of its target and equal shares never
// give a better bin more values than a worse one.
//
// Cut points are observed corpus values (no interpolation): the corpus is
// sorted descending and cut k is the value ending bin k. When ties would
// make a cut point repeat the previous one, the next smaller observed value
// is used instead. Only when the corpus has no smaller value left does the
// cut fall off the corpus, onto the next representable float below the
// previous cut, which keeps the boundaries strictly decreasing.
//
// Non-finite values are ignored. A corpus with fewer than two distinct values
// returns an error wrapping ErrInsufficientData.
func Calibrate(corpus []float64, fractions Fractions) (Boundaries, error) {
	if err := fractions.Validate(); err != nil {
		return Boundaries{}, err
	}

	sorted := make([]float64, 0, len(corpus))
	for _, v := range corpus {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			sorted = append(sorted, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	n := len(sorted)
	if n == 0 || sorted[0] == sorted[n-1] {
		return Boundaries{}, fmt.Errorf("%w: %d values, need at least 2 distinct", ErrInsufficientData, n)
	}

	counts := binCounts(fractions, n)
	var b Boundaries
	rank := 0
	for k := range fractions {
		rank += counts[k]
		cut := sorted[max(0, min(rank, n-1))]
		if k > 0 && cut >= b[k-1] {
			cut = nextBelow(sorted, rank, b[k-1])
		}
		b[k] = cut
	}
	return b, nil
}

// binCounts splits n values over the bins by the shares the fractions
// imply. The remainder goes to the worst bins.
func binCounts(fractions Fractions, n int) [models.RatingCount]int {
	var counts [models.RatingCount]int
	upper, assigned := 1.0, 0
	for i := range counts {
		lower := 0.0
		if i < len(fractions) {
			lower = fractions[i]
		}
		// The epsilon absorbs float noise such as (1-0.8)*100 = 19.999...
		counts[i] = int(math.Floor((upper-lower)*float64(n) + 1e-9))
		assigned += counts[i]
		upper = lower
	}
	for i := len(counts) - 1; assigned < n; i-- {
		counts[i]++
		assigned++
	}
	return counts
}

// nextBelow returns the first value of the descending slice at or after from
// that is strictly below limit, or the next float below limit.
func nextBelow(sorted []float64, from int, limit float64) float64 {
	for _, v := range sorted[from:] {
		if v < limit {
			return v
		}
	}
	return math.Nextafter(limit, math.Inf(-1))
}

// CalibrateStore calibrates every metric of corpus and overlays the results
// on prior. Metrics that cannot be calibrated keep their prior boundaries and
// are reported as *CalibrationError values.
func CalibrateStore(corpus map[models.MetricID][]float64, fractions Fractions, prior BoundaryStore) (BoundaryStore, []error) {
	if err := fractions.Validate(); err != nil {
		return prior, []error{err}
	}

	next := prior
	var errs []error
	for _, id := range models.AllMetrics() {
		values, ok := corpus[id]
		if !ok {
			continue
		}
		b, err := Calibrate(values, fractions)
		if err != nil {
			errs = append(errs, &CalibrationError{Metric: id, Size: len(values)})
			continue
		}
		if next, err = next.With(id, b); err != nil {
			errs = append(errs, err)
		}
	}
	return next, errs
}

// Population counts how many corpus values fall into each bin.
func Population(corpus []float64, b Boundaries) [models.RatingCount]int {
	var counts [models.RatingCount]int
	for _, v := range corpus {
		counts[b.Classify(v)]++
	}
	return counts
}
