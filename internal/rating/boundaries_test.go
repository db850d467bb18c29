package rating

import (
	"math"
	"testing"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundaries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		b       Boundaries
		wantErr bool
	}{
		{name: "default", b: DefaultBoundaries},
		{name: "strictly decreasing", b: Boundaries{1.8, 1.4, 1.0, 0.6}},
		{name: "negative values allowed", b: Boundaries{0, -1, -2, -3}},
		{name: "increasing", b: Boundaries{0.6, 1.0, 1.4, 1.8}, wantErr: true},
		{name: "repeated cut point", b: Boundaries{1.8, 1.4, 1.4, 0.6}, wantErr: true},
		{name: "nan", b: Boundaries{1.8, math.NaN(), 1.0, 0.6}, wantErr: true},
		{name: "infinite", b: Boundaries{math.Inf(1), 1.4, 1.0, 0.6}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.b.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBoundaries)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBoundaries_Classify(t *testing.T) {
	b := Boundaries{1.8, 1.4, 1.0, 0.6}

	tests := []struct {
		index float64
		want  models.Rating
	}{
		{math.Inf(1), models.RatingA},
		{2.0, models.RatingA},
		{1.8000001, models.RatingA},
		{1.8, models.RatingB},
		{1.5, models.RatingB},
		{1.4, models.RatingC},
		{1.0, models.RatingD},
		{0.7, models.RatingD},
		{0.6, models.RatingE},
		{0, models.RatingE},
		{-5, models.RatingE},
		{math.Inf(-1), models.RatingE},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Classify(tt.index), "index %v", tt.index)
	}
}

func TestBoundaries_ClassifyIsMonotonic(t *testing.T) {
	for _, b := range []Boundaries{DefaultBoundaries, {1.8, 1.4, 1.0, 0.6}, {10, 0.1, 0.01, 0.001}} {
		prev := models.RatingE
		for x := -1.0; x <= 12; x += 0.01 {
			r := b.Classify(x)
			assert.LessOrEqual(t, r, prev, "boundaries %v index %v", b, x)
			prev = r
		}
	}
}

func TestBoundaries_Interval(t *testing.T) {
	b := Boundaries{1.8, 1.4, 1.0, 0.6}

	lo, hi := b.Interval(models.RatingA)
	assert.Equal(t, 1.8, lo)
	assert.True(t, math.IsInf(hi, 1))

	lo, hi = b.Interval(models.RatingC)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 1.4, hi)

	lo, hi = b.Interval(models.RatingE)
	assert.True(t, math.IsInf(lo, -1))
	assert.Equal(t, 0.6, hi)
}

func TestClassify_AbsentIndex(t *testing.T) {
	assert.Nil(t, Classify(nil, DefaultBoundaries))

	r := Classify(utils.Ptr(2.0), Boundaries{1.8, 1.4, 1.0, 0.6})
	require.NotNil(t, r)
	assert.Equal(t, models.RatingA, *r)
}

func TestBoundaryStore(t *testing.T) {
	var s BoundaryStore
	b, ok := s.Get(models.MetricTop1Val)
	assert.False(t, ok)
	assert.Equal(t, DefaultBoundaries, b)

	custom := Boundaries{1.8, 1.4, 1.0, 0.6}
	next, err := s.With(models.MetricTop1Val, custom)
	require.NoError(t, err)

	b, ok = next.Get(models.MetricTop1Val)
	assert.True(t, ok)
	assert.Equal(t, custom, b)

	_, ok = s.Get(models.MetricTop1Val)
	assert.False(t, ok, "With must not modify the receiver")

	_, err = next.With(models.MetricTop5Val, Boundaries{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrInvalidBoundaries)

	_, err = next.With(models.MetricID(99), custom)
	assert.ErrorIs(t, err, ErrUnknownMetric)

	assert.Equal(t, []models.MetricID{models.MetricTop1Val}, next.Metrics())
	assert.Equal(t, 1, next.Len())
}

func TestBoundaryStore_Merge(t *testing.T) {
	a, err := NewBoundaryStore(map[models.MetricID]Boundaries{
		models.MetricTop1Val:  {1.2, 1.1, 0.9, 0.8},
		models.MetricFileSize: {3, 2, 1, 0.5},
	})
	require.NoError(t, err)
	b, err := NewBoundaryStore(map[models.MetricID]Boundaries{
		models.MetricFileSize:      {4, 3, 2, 1},
		models.MetricInferenceTime: {2, 1.5, 1, 0.5},
	})
	require.NoError(t, err)

	merged := a.Merge(b)
	assert.Equal(t, map[models.MetricID]Boundaries{
		models.MetricTop1Val:       {1.2, 1.1, 0.9, 0.8},
		models.MetricFileSize:      {4, 3, 2, 1},
		models.MetricInferenceTime: {2, 1.5, 1, 0.5},
	}, merged.Map())
}

func TestNewBoundaryStore_RejectsInvalid(t *testing.T) {
	_, err := NewBoundaryStore(map[models.MetricID]Boundaries{
		models.MetricTop1Val: {0.5, 0.5, 0.5, 0.5},
	})
	assert.ErrorIs(t, err, ErrInvalidBoundaries)
	assert.Contains(t, err.Error(), "top1_val")
}
