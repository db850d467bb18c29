package rating

import (
	"fmt"

	"github.com/energylabel/elex/internal/models"
)

// Grid holds the compound rating of every pair of bins of two metrics:
// Grid[x][y] is the rating a model would get with bin x on the first metric
// and bin y on the second.
type Grid [models.RatingCount][models.RatingCount]models.Rating

// NewGrid computes the two-metric rating grid under mode and the two weights.
// When both weights are zero the weighted modes cannot rate anything and
// ErrNoRatableMetrics is returned.
func NewGrid(mode Mode, weightX, weightY float64) (Grid, error) {
	var g Grid
	for x := range models.RatingCount {
		for y := range models.RatingCount {
			r, err := Aggregate([]WeightedRating{
				{Rating: models.Rating(x), Weight: weightX},
				{Rating: models.Rating(y), Weight: weightY},
			}, mode)
			if err != nil {
				return Grid{}, err
			}
			g[x][y] = r
		}
	}
	return g, nil
}

// RealBoundaries maps index cut points onto the raw value axis of a metric.
// For lower-is-better metrics the resulting values increase, since a worse
// bin means a larger raw value.
func RealBoundaries(b Boundaries, reference *float64, dir models.Direction) (Boundaries, error) {
	if !ValidReference(reference) {
		return Boundaries{}, fmt.Errorf("%w: reference value missing or zero", ErrIndexUndefined)
	}
	var out Boundaries
	for i, c := range b {
		out[i] = RealValue(c, *reference, dir)
	}
	return out, nil
}
