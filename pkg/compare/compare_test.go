package compare_test

import (
	"testing"

	"github.com/clindict/omopstat/pkg/compare"
	"github.com/clindict/omopstat/pkg/omop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numericSummary() *omop.ConceptStatisticalSummary {
	return &omop.ConceptStatisticalSummary{
		DataTypes: omop.Numeric,
		RowsCount: 200,
		StatisticalData: &omop.StatisticalData{
			Min:                    omop.Ptr(3.0),
			Max:                    omop.Ptr(20.0),
			Mean:                   omop.Ptr(13.5),
			Median:                 omop.Ptr(13.8),
			SD:                     omop.Ptr(2.1),
			CoefficientOfVariation: omop.Ptr(0.16),
			P5:                     omop.Ptr(9.8),
			P25:                    omop.Ptr(12.3),
			P75:                    omop.Ptr(15.0),
			P95:                    omop.Ptr(17.2),
		},
	}
}

func categoricalSummary(vals ...omop.PossibleValue) *omop.ConceptStatisticalSummary {
	return &omop.ConceptStatisticalSummary{
		DataTypes:      omop.Categorical,
		RowsCount:      100,
		PossibleValues: vals,
	}
}

func TestSelfSimilarity(t *testing.T) {
	s := numericSummary()
	res := compare.Distributions(s, s, nil)

	assert.InDelta(t, 1.0, res.OverallScore, 1e-9)
	require.NotNil(t, res.QuantileSimilarity)
	assert.InDelta(t, 1.0, *res.QuantileSimilarity, 1e-9)
	require.NotNil(t, res.CVSimilarity)
	assert.InDelta(t, 1.0, *res.CVSimilarity, 1e-9)
	require.NotNil(t, res.RangeSimilarity)
	assert.InDelta(t, 1.0, *res.RangeSimilarity, 1e-9)
	require.NotNil(t, res.DistributionDistance)
	assert.InDelta(t, 0.0, *res.DistributionDistance, 1e-9)
	assert.Nil(t, res.CategoricalSimilarity)
	assert.Nil(t, res.FrequencySimilarity)
}

func TestSymmetry(t *testing.T) {
	a := numericSummary()
	b := numericSummary()
	b.StatisticalData.Min = omop.Ptr(5.0)
	b.StatisticalData.Mean = omop.Ptr(11.0)
	b.StatisticalData.Median = omop.Ptr(10.5)
	b.StatisticalData.CoefficientOfVariation = omop.Ptr(0.4)
	b.StatisticalData.P25 = omop.Ptr(8.0)

	ab := compare.Distributions(a, b, nil)
	ba := compare.Distributions(b, a, nil)
	assert.Equal(t, ab, ba)
}

func TestTypeMismatch(t *testing.T) {
	a := numericSummary()
	b := categoricalSummary(omop.PossibleValue{Value: "Positive", Count: 50, Percent: 50})

	res := compare.Distributions(a, b, nil)
	assert.Equal(t, 0.1, res.OverallScore)
	require.NotNil(t, res.DistributionDistance)
	assert.Equal(t, 1.0, *res.DistributionDistance)
	assert.Nil(t, res.QuantileSimilarity)
	assert.Nil(t, res.CategoricalSimilarity)
}

func TestMissingStatsNeutral(t *testing.T) {
	a := numericSummary()
	b := numericSummary()
	b.StatisticalData.P5 = nil
	b.StatisticalData.CoefficientOfVariation = nil

	res := compare.Distributions(a, b, nil)
	require.NotNil(t, res.QuantileSimilarity)
	assert.Equal(t, 0.5, *res.QuantileSimilarity)
	require.NotNil(t, res.CVSimilarity)
	assert.Equal(t, 0.5, *res.CVSimilarity)
}

func TestAllNullNumeric(t *testing.T) {
	a := omop.EmptySummary()
	b := omop.EmptySummary()

	res := compare.Distributions(a, b, nil)
	// Every sub-metric is the 0.5 neutral default, so the overall score
	// is half the weight sum.
	assert.InDelta(t, 0.5, res.OverallScore, 1e-9)
}

func TestCustomWeights(t *testing.T) {
	a := numericSummary()
	w := &compare.Weights{Quantile: 1, CV: 0, Range: 0, Distance: 0}
	res := compare.Distributions(a, a, w)
	assert.InDelta(t, 1.0, res.OverallScore, 1e-9)

	w = &compare.Weights{}
	res = compare.Distributions(a, a, w)
	assert.Equal(t, 0.0, res.OverallScore, "zero weights give a literal zero sum")
}

func TestIdenticalCategorical(t *testing.T) {
	a := categoricalSummary(
		omop.PossibleValue{Value: "Negative", Count: 70, Percent: 70},
		omop.PossibleValue{Value: "Positive", Count: 30, Percent: 30},
	)
	b := categoricalSummary(
		omop.PossibleValue{Value: "Negative", Count: 140, Percent: 70},
		omop.PossibleValue{Value: "Positive", Count: 60, Percent: 30},
	)

	res := compare.Distributions(a, b, nil)
	assert.InDelta(t, 1.0, res.OverallScore, 1e-9)
	require.NotNil(t, res.CategoricalSimilarity)
	assert.InDelta(t, 1.0, *res.CategoricalSimilarity, 1e-9)
	require.NotNil(t, res.FrequencySimilarity)
	assert.InDelta(t, 1.0, *res.FrequencySimilarity, 1e-9)
	require.NotNil(t, res.DistributionDistance)
	assert.InDelta(t, 0.0, *res.DistributionDistance, 1e-9)
}

func TestDisjointCategorical(t *testing.T) {
	a := categoricalSummary(
		omop.PossibleValue{Value: "Positive", Count: 60, Percent: 60},
		omop.PossibleValue{Value: "Negative", Count: 40, Percent: 40},
	)
	b := categoricalSummary(
		omop.PossibleValue{Value: "High", Count: 50, Percent: 50},
		omop.PossibleValue{Value: "Low", Count: 50, Percent: 50},
	)

	res := compare.Distributions(a, b, nil)
	assert.Equal(t, 0.0, res.OverallScore)
	require.NotNil(t, res.CategoricalSimilarity)
	assert.Equal(t, 0.0, *res.CategoricalSimilarity)
	require.NotNil(t, res.FrequencySimilarity)
	assert.Equal(t, 0.0, *res.FrequencySimilarity)
}

func TestPartialCategoricalOverlap(t *testing.T) {
	a := categoricalSummary(
		omop.PossibleValue{Value: "Positive", Count: 60, Percent: 60},
		omop.PossibleValue{Value: "Negative", Count: 40, Percent: 40},
	)
	b := categoricalSummary(
		omop.PossibleValue{Value: "Positive", Count: 30, Percent: 30},
		omop.PossibleValue{Value: "Unknown", Count: 70, Percent: 70},
	)

	res := compare.Distributions(a, b, nil)
	require.NotNil(t, res.CategoricalSimilarity)
	// One shared value out of three distinct.
	assert.InDelta(t, 1.0/3.0, *res.CategoricalSimilarity, 1e-9)
	// A single common value renormalizes to identical distributions.
	require.NotNil(t, res.FrequencySimilarity)
	assert.InDelta(t, 1.0, *res.FrequencySimilarity, 1e-9)
	assert.Greater(t, res.OverallScore, 0.0)
	assert.Less(t, res.OverallScore, 1.0)
}

func TestDistributionsJSON(t *testing.T) {
	a, err := numericSummary().ToJSON()
	require.NoError(t, err)
	b, err := numericSummary().ToJSON()
	require.NoError(t, err)

	res, err := compare.DistributionsJSON(a, b, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.OverallScore, 1e-9)

	_, err = compare.DistributionsJSON([]byte("{nope"), b, nil)
	assert.Error(t, err)
}

func TestResultToJSON(t *testing.T) {
	res := compare.Distributions(numericSummary(), numericSummary(), nil)
	data, err := res.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"overall_score"`)
	assert.Contains(t, string(data), `"categorical_similarity":null`)
}
