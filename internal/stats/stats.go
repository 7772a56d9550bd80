package stats

import "math"

// Mean returns the arithmetic mean of the series, or 0 for an empty series.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of the series (divide by
// N, not N-1), or 0 for an empty series.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// ZScore returns the standardized distance of value from the baseline mean.
// A zero or negative std yields 0, disabling z-score comparison.
func ZScore(value, mean, std float64) float64 {
	if std <= 0 {
		return 0
	}
	return (value - mean) / std
}

// PercentChange returns the relative change of value against the baseline
// mean, as a percentage. A zero or negative mean yields 0.
func PercentChange(value, mean float64) float64 {
	if mean <= 0 {
		return 0
	}
	return (value - mean) / mean * 100.0
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
