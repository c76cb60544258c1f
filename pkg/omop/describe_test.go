package omop_test

import (
	"testing"

	"github.com/clindict/omopstat/pkg/omop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		msg   string
		input string
		value float64
		ok    bool
	}{
		{"integer", "42", 42, true},
		{"float", "3.14", 3.14, true},
		{"negative", "-0.5", -0.5, true},
		{"padded", "  7.5  ", 7.5, true},
		{"scientific", "1e3", 1000, true},
		{"empty", "", 0, false},
		{"blank", "   ", 0, false},
		{"text", "positive", 0, false},
		{"mixed", "12mg", 0, false},
		{"nan", "NaN", 0, false},
		{"inf", "Inf", 0, false},
	}

	for _, v := range tests {
		value, ok := omop.ParseNumeric(v.input)
		assert.Equal(t, v.ok, ok, v.msg)
		if v.ok {
			assert.Equal(t, v.value, value, v.msg)
		}
	}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		msg string
		p   float64
		res float64
	}{
		{"min", 0, 1},
		{"max", 1, 5},
		{"median", 0.5, 3},
		{"q1", 0.25, 2},
		{"q3", 0.75, 4},
		{"interpolated", 0.1, 1.4},
	}

	for _, v := range tests {
		assert.InDelta(t, v.res, omop.Quantile(sorted, v.p), 1e-9, v.msg)
	}

	assert.Equal(t, 0.0, omop.Quantile(nil, 0.5), "empty")
	assert.Equal(t, 7.0, omop.Quantile([]float64{7}, 0.95), "single")
}

func TestDescribe(t *testing.T) {
	values := []float64{10, 12, 14, 16, 18, 20, 22, 24, 26, 28}

	res := omop.Describe(values, true)
	require.NotNil(t, res)

	assert.Equal(t, 10.0, *res.Min)
	assert.Equal(t, 28.0, *res.Max)
	assert.Equal(t, 19.0, *res.Mean)
	assert.Equal(t, 19.0, *res.Median)
	// Population sd of an arithmetic progression 10..28 step 2.
	assert.InDelta(t, 5.74, *res.SD, 0.01)
	require.NotNil(t, res.CoefficientOfVariation)
	assert.InDelta(t, 0.302, *res.CoefficientOfVariation, 0.001)

	require.NotNil(t, res.P5)
	require.NotNil(t, res.P25)
	require.NotNil(t, res.P75)
	require.NotNil(t, res.P95)

	// Computed quantiles are monotone.
	assert.LessOrEqual(t, *res.P5, *res.P25)
	assert.LessOrEqual(t, *res.P25, *res.Median)
	assert.LessOrEqual(t, *res.Median, *res.P75)
	assert.LessOrEqual(t, *res.P75, *res.P95)
}

func TestDescribeWithoutPercentiles(t *testing.T) {
	res := omop.Describe([]float64{1, 2, 3}, false)
	require.NotNil(t, res)
	assert.Nil(t, res.P5)
	assert.Nil(t, res.P25)
	assert.Nil(t, res.P75)
	assert.Nil(t, res.P95)
	assert.NotNil(t, res.Mean)
}

func TestDescribeZeroMean(t *testing.T) {
	// Mean of a symmetric distribution around zero is zero, so the
	// coefficient of variation is undefined.
	res := omop.Describe([]float64{-1, 0, 1}, true)
	require.NotNil(t, res)
	assert.Equal(t, 0.0, *res.Mean)
	assert.Nil(t, res.CoefficientOfVariation)
}

func TestDescribeEmpty(t *testing.T) {
	assert.Nil(t, omop.Describe(nil, true))
}

func TestFrequencyTable(t *testing.T) {
	counts := map[string]int64{
		"Positive":   60,
		"Negative":   30,
		"Borderline": 8,
		"Unknown":    2,
	}

	res := omop.FrequencyTable(counts, 100, 10, 10)
	require.Len(t, res, 2, "entries below min count are dropped")

	assert.Equal(t, "Positive", res[0].Value)
	assert.Equal(t, int64(60), res[0].Count)
	assert.Equal(t, 60.0, res[0].Percent)
	assert.Equal(t, "Negative", res[1].Value)
	assert.Equal(t, 30.0, res[1].Percent)
}

func TestFrequencyTableTruncation(t *testing.T) {
	counts := map[string]int64{
		"a": 50, "b": 40, "c": 30, "d": 20,
	}

	res := omop.FrequencyTable(counts, 140, 1, 2)
	require.Len(t, res, 2, "kept entries are capped")
	assert.Equal(t, "a", res[0].Value)
	assert.Equal(t, "b", res[1].Value)
}
