// Package compare scores the similarity of two concept statistical
// summaries. It is a pure package: no I/O, no shared state.
//
// Two numeric summaries are compared with four independent
// sub-metrics (quantile overlap, coefficient-of-variation ratio,
// range overlap, normalized mean/median distance) blended into one
// overall score. Two categorical summaries are compared with the
// Jaccard index of their value sets and the Jensen-Shannon similarity
// of their frequency profiles. Summaries of different data types are
// incomparable and yield a fixed sentinel result.
package compare

import (
	"math"

	"github.com/clindict/omopstat/pkg/omop"
	"github.com/gnames/gnfmt"
)

// Weights controls the blend of numeric sub-metrics in the overall
// score. The defaults are empirically chosen constants kept for
// compatibility with earlier alignment runs; they are tunable, not
// principled. No renormalization is applied: callers supplying their
// own weights get the literal weighted sum.
type Weights struct {
	Quantile float64 `json:"quantile"`
	CV       float64 `json:"cv"`
	Range    float64 `json:"range"`
	Distance float64 `json:"distance"`
}

// DefaultWeights returns the standard metric blend.
func DefaultWeights() Weights {
	return Weights{
		Quantile: 0.35,
		CV:       0.25,
		Range:    0.25,
		Distance: 0.15,
	}
}

// Result is the outcome of comparing two summaries. Component scores
// are nil when they do not apply to the comparison type. All scores
// are in [0,1] with higher meaning more similar, except
// DistributionDistance where higher means further apart.
type Result struct {
	OverallScore          float64  `json:"overall_score"`
	QuantileSimilarity    *float64 `json:"quantile_similarity"`
	CVSimilarity          *float64 `json:"cv_similarity"`
	RangeSimilarity       *float64 `json:"range_similarity"`
	CategoricalSimilarity *float64 `json:"categorical_similarity"`
	FrequencySimilarity   *float64 `json:"frequency_similarity"`
	DistributionDistance  *float64 `json:"distribution_distance"`
}

// incomparableScore is the fixed low score returned when comparing
// summaries with mismatched data-type tags.
const incomparableScore = 0.1

// neutralScore is the default used when a sub-metric cannot be
// computed because an optional statistic is missing on either side.
const neutralScore = 0.5

// jsEpsilon floors probabilities before logarithms in the
// Jensen-Shannon divergence to avoid log(0).
const jsEpsilon = 1e-10

// Distributions compares two summaries and returns their similarity.
// Summaries with different data-type tags produce the incomparable
// sentinel (overall 0.1, distance 1.0) without further computation.
func Distributions(
	a, b *omop.ConceptStatisticalSummary,
	weights *Weights,
) *Result {
	if a.DataTypes != b.DataTypes {
		return &Result{
			OverallScore:         incomparableScore,
			DistributionDistance: omop.Ptr(1.0),
		}
	}

	if a.DataTypes == omop.Categorical {
		return compareCategorical(a, b)
	}

	w := DefaultWeights()
	if weights != nil {
		w = *weights
	}
	return compareNumeric(a, b, w)
}

// DistributionsJSON compares two summaries given in their canonical
// serialized form.
func DistributionsJSON(a, b []byte, weights *Weights) (*Result, error) {
	sa, err := omop.SummaryFromJSON(a)
	if err != nil {
		return nil, err
	}
	sb, err := omop.SummaryFromJSON(b)
	if err != nil {
		return nil, err
	}
	return Distributions(sa, sb, weights), nil
}

// ToJSON serializes the result to compact JSON with explicit nulls.
func (r *Result) ToJSON() ([]byte, error) {
	enc := gnfmt.GNjson{}
	return enc.Encode(r)
}

func compareNumeric(
	a, b *omop.ConceptStatisticalSummary,
	w Weights,
) *Result {
	sa, sb := a.StatisticalData, b.StatisticalData
	if sa == nil {
		sa = &omop.StatisticalData{}
	}
	if sb == nil {
		sb = &omop.StatisticalData{}
	}

	quantile := quantileSimilarity(sa, sb)
	cv := cvSimilarity(sa.CoefficientOfVariation, sb.CoefficientOfVariation)
	rng := rangeSimilarity(sa, sb)
	dist := distributionDistance(sa, sb)

	overall := w.Quantile*quantile +
		w.CV*cv +
		w.Range*rng +
		w.Distance*(1-dist)

	return &Result{
		OverallScore:         overall,
		QuantileSimilarity:   omop.Ptr(quantile),
		CVSimilarity:         omop.Ptr(cv),
		RangeSimilarity:      omop.Ptr(rng),
		DistributionDistance: omop.Ptr(dist),
	}
}

// quantileSimilarity blends the interquartile-range overlap (0.6) with
// the 5th-95th percentile span overlap (0.4). Missing percentiles on
// either side fall back to the neutral default.
func quantileSimilarity(a, b *omop.StatisticalData) float64 {
	if a.P25 == nil || a.P75 == nil || b.P25 == nil || b.P75 == nil ||
		a.P5 == nil || a.P95 == nil || b.P5 == nil || b.P95 == nil {
		return neutralScore
	}
	iqr := intervalOverlap(*a.P25, *a.P75, *b.P25, *b.P75)
	span := intervalOverlap(*a.P5, *a.P95, *b.P5, *b.P95)
	return 0.6*iqr + 0.4*span
}

// cvSimilarity is the ratio of the smaller to the larger coefficient
// of variation. Missing on either side yields the neutral default;
// a larger cv of zero yields zero.
func cvSimilarity(cva, cvb *float64) float64 {
	if cva == nil || cvb == nil {
		return neutralScore
	}
	lo := math.Min(*cva, *cvb)
	hi := math.Max(*cva, *cvb)
	if hi == 0 {
		return 0
	}
	return lo / hi
}

// rangeSimilarity is the overlap-over-union of the two [min,max]
// intervals.
func rangeSimilarity(a, b *omop.StatisticalData) float64 {
	if a.Min == nil || a.Max == nil || b.Min == nil || b.Max == nil {
		return neutralScore
	}
	return intervalOverlap(*a.Min, *a.Max, *b.Min, *b.Max)
}

// distributionDistance averages the absolute difference of the
// normalized mean positions and normalized median positions, each
// position expressed within its own distribution's [min,max] range.
// Undefined normalization (max == min) yields the neutral default.
func distributionDistance(a, b *omop.StatisticalData) float64 {
	meanA, okA := normalizedPosition(a.Mean, a.Min, a.Max)
	meanB, okB := normalizedPosition(b.Mean, b.Min, b.Max)
	medA, okC := normalizedPosition(a.Median, a.Min, a.Max)
	medB, okD := normalizedPosition(b.Median, b.Min, b.Max)
	if !okA || !okB || !okC || !okD {
		return neutralScore
	}
	return (math.Abs(meanA-meanB) + math.Abs(medA-medB)) / 2
}

func normalizedPosition(v, lo, hi *float64) (float64, bool) {
	if v == nil || lo == nil || hi == nil || *hi == *lo {
		return 0, false
	}
	pos := (*v - *lo) / (*hi - *lo)
	if math.IsNaN(pos) {
		return 0, false
	}
	return pos, true
}

// intervalOverlap returns overlap-over-union of two closed intervals,
// 0 when the union is degenerate.
func intervalOverlap(min1, max1, min2, max2 float64) float64 {
	overlap := math.Max(0, math.Min(max1, max2)-math.Max(min1, min2))
	union := math.Max(max1, max2) - math.Min(min1, min2)
	if union == 0 {
		return 0
	}
	return overlap / union
}

func compareCategorical(
	a, b *omop.ConceptStatisticalSummary,
) *Result {
	jaccard := jaccardIndex(a.PossibleValues, b.PossibleValues)
	freq := frequencySimilarity(a.PossibleValues, b.PossibleValues)
	overall := (jaccard + freq) / 2

	return &Result{
		OverallScore:          overall,
		CategoricalSimilarity: omop.Ptr(jaccard),
		FrequencySimilarity:   omop.Ptr(freq),
		DistributionDistance:  omop.Ptr(1 - overall),
	}
}

// jaccardIndex is |A ∩ B| / |A ∪ B| over the two value sets.
func jaccardIndex(a, b []omop.PossibleValue) float64 {
	setA := valueSet(a)
	setB := valueSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	var common int
	for v := range setA {
		if _, ok := setB[v]; ok {
			common++
		}
	}
	union := len(setA) + len(setB) - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}

// frequencySimilarity is 1 minus the square-rooted Jensen-Shannon
// divergence of the two frequency-percent vectors restricted to
// values common to both sets; 0 when no values are shared.
func frequencySimilarity(a, b []omop.PossibleValue) float64 {
	pctA := percentByValue(a)
	pctB := percentByValue(b)

	var common []string
	for v := range pctA {
		if _, ok := pctB[v]; ok {
			common = append(common, v)
		}
	}
	if len(common) == 0 {
		return 0
	}

	p := make([]float64, len(common))
	q := make([]float64, len(common))
	var sumP, sumQ float64
	for i, v := range common {
		p[i] = pctA[v]
		q[i] = pctB[v]
		sumP += p[i]
		sumQ += q[i]
	}
	if sumP == 0 || sumQ == 0 {
		return 0
	}
	for i := range common {
		p[i] = math.Max(p[i]/sumP, jsEpsilon)
		q[i] = math.Max(q[i]/sumQ, jsEpsilon)
	}

	js := jensenShannon(p, q)
	return 1 - math.Sqrt(js)
}

// jensenShannon computes the Jensen-Shannon divergence between two
// probability vectors of equal length. Inputs must be epsilon-floored
// by the caller.
func jensenShannon(p, q []float64) float64 {
	var res float64
	for i := range p {
		m := (p[i] + q[i]) / 2
		res += 0.5*p[i]*math.Log2(p[i]/m) + 0.5*q[i]*math.Log2(q[i]/m)
	}
	// Guard tiny negative values from floating point error.
	if res < 0 {
		return 0
	}
	return res
}

func valueSet(vv []omop.PossibleValue) map[string]struct{} {
	res := make(map[string]struct{}, len(vv))
	for _, v := range vv {
		res[v.Value] = struct{}{}
	}
	return res
}

func percentByValue(vv []omop.PossibleValue) map[string]float64 {
	res := make(map[string]float64, len(vv))
	for _, v := range vv {
		res[v.Value] = v.Percent
	}
	return res
}
