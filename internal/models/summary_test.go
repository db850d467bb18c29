package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRating_Letter(t *testing.T) {
	assert.Equal(t, "A", RatingA.Letter())
	assert.Equal(t, "E", RatingE.String())
	assert.Equal(t, "?", Rating(5).Letter())
	assert.Equal(t, "?", Rating(-1).Letter())
	assert.False(t, Rating(5).Valid())
}

func TestParseRating(t *testing.T) {
	r, err := ParseRating("c")
	require.NoError(t, err)
	assert.Equal(t, RatingC, r)

	r, err = ParseRating(" E ")
	require.NoError(t, err)
	assert.Equal(t, RatingE, r)

	_, err = ParseRating("F")
	assert.Error(t, err)
	_, err = ParseRating("")
	assert.Error(t, err)
}

func TestMeasurements_Value(t *testing.T) {
	v := 0.0
	m := Measurements{Model: "ResNet101"}
	m.Values[MetricFileSize] = &v

	got, ok := m.Value(MetricFileSize)
	assert.True(t, ok)
	assert.Equal(t, 0.0, got)

	_, ok = m.Value(MetricGFLOPs)
	assert.False(t, ok)
}

func TestSummary_JSON(t *testing.T) {
	value, index := 100.0, 1.0
	b := RatingB
	s := Summary{Name: "ResNet101", Environment: "A100", Task: TaskInference, Compound: &b}
	s.Results[MetricInferencePowerDraw] = MetricResult{Value: &value, Index: &index, Rating: &b, Weight: 1}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "ResNet101", raw["name"])
	assert.EqualValues(t, 1, raw["compound_rating"])
	metrics, ok := raw["metrics"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, metrics, len(TaskInference.Metrics()))
	assert.NotContains(t, metrics, "train_time")

	gflops, ok := metrics["gflops"].(map[string]any)
	require.True(t, ok)
	assert.Nil(t, gflops["value"])
	assert.Nil(t, gflops["rating"])

	var back Summary
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.Name, back.Name)
	assert.Equal(t, RatingB, *back.Compound)
	assert.Equal(t, 100.0, *back.Result(MetricInferencePowerDraw).Value)
}

func TestSummary_UnmarshalUnknownMetric(t *testing.T) {
	var s Summary
	err := json.Unmarshal([]byte(`{"name":"x","metrics":{"watts":{"weight":1}}}`), &s)
	assert.ErrorContains(t, err, "watts")
}
