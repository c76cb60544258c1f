package omop

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Round2 rounds to 2 decimal places, the precision used for all
// summary statistics except the coefficient of variation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round3 rounds to 3 decimal places, used for the coefficient of
// variation.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// ParseNumeric attempts to coerce a raw value to a float64.
// Returns (0, false) for empty strings and non-coercible values so
// callers skip them explicitly instead of relying on silent coercion.
func ParseNumeric(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Quantile computes the p-th quantile (p in [0,1]) of sorted values
// using linear interpolation between closest ranks. Returns 0 for an
// empty slice; callers guard against that case.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Describe computes descriptive statistics over numeric values:
// min, max, mean, median, population standard deviation, coefficient
// of variation and, when withPercentiles is true, the 5th, 25th, 75th
// and 95th percentiles. All values are rounded to 2 decimals, the
// coefficient of variation to 3. The coefficient of variation is nil
// when the mean is zero. Returns nil for an empty input.
func Describe(values []float64, withPercentiles bool) *StatisticalData {
	n := len(values)
	if n == 0 {
		return nil
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, v := range sorted {
		d := v - mean
		sqDiff += d * d
	}
	sd := math.Sqrt(sqDiff / float64(n))

	res := &StatisticalData{
		Min:    Ptr(Round2(sorted[0])),
		Max:    Ptr(Round2(sorted[n-1])),
		Mean:   Ptr(Round2(mean)),
		Median: Ptr(Round2(Quantile(sorted, 0.5))),
		SD:     Ptr(Round2(sd)),
	}

	if mean != 0 {
		res.CoefficientOfVariation = Ptr(Round3(math.Abs(sd / mean)))
	}

	if withPercentiles {
		res.P5 = Ptr(Round2(Quantile(sorted, 0.05)))
		res.P25 = Ptr(Round2(Quantile(sorted, 0.25)))
		res.P75 = Ptr(Round2(Quantile(sorted, 0.75)))
		res.P95 = Ptr(Round2(Quantile(sorted, 0.95)))
	}

	return res
}

// FrequencyTable builds the categorical frequency table for a
// concept's raw values: entries with fewer than minCount occurrences
// are dropped, the remainder sorted by descending count (value
// ascending on ties), truncated to maxStored entries, each annotated
// with its percentage of rowsCount rounded to 2 decimals.
func FrequencyTable(
	counts map[string]int64,
	rowsCount int64,
	minCount int64,
	maxStored int,
) []PossibleValue {
	res := make([]PossibleValue, 0, len(counts))
	for value, count := range counts {
		if count < minCount {
			continue
		}
		res = append(res, PossibleValue{
			Value:   value,
			Count:   count,
			Percent: Round2(float64(count) / float64(rowsCount) * 100),
		})
	}

	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Value < res[j].Value
	})

	if maxStored > 0 && len(res) > maxStored {
		res = res[:maxStored]
	}
	return res
}
