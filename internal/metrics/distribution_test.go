package metrics

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/energylabel/elex/internal/models"
	"github.com/energylabel/elex/internal/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	corpus := []float64{2.0, 1.5, 1.1, 0.9, 0.6, 0.3, math.NaN()}
	b := rating.Boundaries{1.8, 1.4, 1.0, 0.6}

	d := Describe(models.MetricTop1Val, corpus, b)
	assert.Equal(t, models.MetricTop1Val, d.Metric)
	assert.Equal(t, 6, d.Count)
	assert.Equal(t, 6, d.Distinct)
	assert.Equal(t, 0.3, d.Min)
	assert.Equal(t, 2.0, d.Max)
	assert.InDelta(t, 1.0666666666, d.Mean, 1e-9)
	assert.InDelta(t, 1.0, d.Median, 1e-12)
	assert.Equal(t, [models.RatingCount]int{1, 1, 1, 1, 2}, d.Population)
	assert.True(t, d.Calibratable)
	assert.Less(t, d.MeanCI95[0], d.Mean)
	assert.Greater(t, d.MeanCI95[1], d.Mean)
	assert.LessOrEqual(t, d.MedianCI95[0], d.Median)
	assert.GreaterOrEqual(t, d.MedianCI95[1], d.Median)
}

func TestDescribe_Empty(t *testing.T) {
	d := Describe(models.MetricGFLOPs, nil, rating.DefaultBoundaries)
	assert.Zero(t, d.Count)
	assert.False(t, d.Calibratable)
	assert.Equal(t, [models.RatingCount]int{}, d.Population)

	d = Describe(models.MetricGFLOPs, []float64{1, 1}, rating.DefaultBoundaries)
	assert.False(t, d.Calibratable)
	assert.Equal(t, 2, d.Population[models.RatingC])
}

func TestDistribution_JSON(t *testing.T) {
	d := Describe(models.MetricFileSize, []float64{1, 2}, rating.DefaultBoundaries)
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "fsize", out["metric"])
	assert.Equal(t, []any{1.25, 1.0, 0.75, 0.5}, out["boundaries"])
	assert.Equal(t, true, out["calibratable"])
}
