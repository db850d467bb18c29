package rating

import (
	"fmt"
	"math"
	"sort"

	"github.com/energylabel/elex/internal/models"
)

// tolerance absorbs floating point noise when weights are normalised.
const tolerance = 1e-9

// WeightedRating is one present per-metric rating and the weight of its metric.
type WeightedRating struct {
	Rating models.Rating
	Weight float64
}

// PresentRatings collects the rated metrics of a summary that apply to its task.
func PresentRatings(s *models.Summary) []WeightedRating {
	var out []WeightedRating
	for _, id := range s.Task.Metrics() {
		res := s.Results[id]
		if res.Rating == nil {
			continue
		}
		out = append(out, WeightedRating{Rating: *res.Rating, Weight: res.Weight})
	}
	return out
}

// Compound aggregates the present ratings of s under mode.
func Compound(s *models.Summary, mode Mode) (models.Rating, error) {
	return Aggregate(PresentRatings(s), mode)
}

// Aggregate combines per-metric ratings into one bin.
//
//   - best / worst: the best or worst present bin, regardless of weight.
//   - mean: weighted mean of bin numbers; optimistic rounds towards A,
//     pessimistic towards E.
//   - median: weighted median; optimistic takes the first bin whose
//     cumulative weight reaches one half, pessimistic the first bin whose
//     cumulative weight exceeds it.
//
// Weighted modes only count ratings with a positive weight and normalise over
// those. ErrNoRatableMetrics is returned when nothing can contribute.
func Aggregate(ratings []WeightedRating, mode Mode) (models.Rating, error) {
	for _, r := range ratings {
		if !r.Rating.Valid() {
			return 0, fmt.Errorf("rating %d outside A..E", int(r.Rating))
		}
	}
	if len(ratings) == 0 {
		return 0, ErrNoRatableMetrics
	}

	switch mode {
	case ModeBest:
		best := ratings[0].Rating
		for _, r := range ratings[1:] {
			if r.Rating < best {
				best = r.Rating
			}
		}
		return best, nil
	case ModeWorst:
		worst := ratings[0].Rating
		for _, r := range ratings[1:] {
			if r.Rating > worst {
				worst = r.Rating
			}
		}
		return worst, nil
	case ModeOptimisticMean, ModePessimisticMean, ModeOptimisticMedian, ModePessimisticMedian:
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
	}

	weighted, total := positiveWeights(ratings)
	if len(weighted) == 0 {
		return 0, ErrNoRatableMetrics
	}

	switch mode {
	case ModeOptimisticMean, ModePessimisticMean:
		return weightedMean(weighted, total, mode.Optimistic()), nil
	default:
		return weightedMedian(weighted, total, mode.Optimistic()), nil
	}
}

func positiveWeights(ratings []WeightedRating) ([]WeightedRating, float64) {
	var out []WeightedRating
	total := 0.0
	for _, r := range ratings {
		if r.Weight > 0 && !math.IsInf(r.Weight, 0) {
			out = append(out, r)
			total += r.Weight
		}
	}
	return out, total
}

func weightedMean(ratings []WeightedRating, total float64, optimistic bool) models.Rating {
	sum := 0.0
	for _, r := range ratings {
		sum += float64(r.Rating) * r.Weight / total
	}
	sum = math.Round(sum/tolerance) * tolerance

	var bin float64
	if optimistic {
		bin = math.Floor(sum)
	} else {
		bin = math.Ceil(sum)
	}
	return clampRating(int(bin))
}

func weightedMedian(ratings []WeightedRating, total float64, optimistic bool) models.Rating {
	sorted := make([]WeightedRating, len(ratings))
	copy(sorted, ratings)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating < sorted[j].Rating })

	cum := 0.0
	for _, r := range sorted {
		cum += r.Weight / total
		if optimistic && cum >= 0.5-tolerance {
			return r.Rating
		}
		if !optimistic && cum > 0.5+tolerance {
			return r.Rating
		}
	}
	return sorted[len(sorted)-1].Rating
}

func clampRating(v int) models.Rating {
	if v < int(models.RatingA) {
		return models.RatingA
	}
	if v > int(models.RatingE) {
		return models.RatingE
	}
	return models.Rating(v)
}
