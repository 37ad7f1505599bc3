package stats

import (
	"math"
	"sort"
)

// Mean calculates the arithmetic mean of a slice of float64 values
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

// Variance calculates the sample variance
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := Mean(values)
	var sumSquaredDiff float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}

	return sumSquaredDiff / float64(len(values)-1)
}

// StdDev calculates the sample standard deviation
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Min returns the smallest value
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest value
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// CoefficientOfVariation calculates the coefficient of variation (CV = stddev / mean)
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}
	return StdDev(values) / mean
}

// StringMode returns the most frequent string (for modal vehicle/driver).
// Ties break toward the lexicographically smallest value so results are stable.
func StringMode(values []string) string {
	if len(values) == 0 {
		return ""
	}

	freq := make(map[string]int)
	for _, v := range values {
		if v == "" {
			continue
		}
		freq[v]++
	}

	keys := make([]string, 0, len(freq))
	for v := range freq {
		keys = append(keys, v)
	}
	sort.Strings(keys)

	maxFreq := 0
	mode := ""
	for _, v := range keys {
		if freq[v] > maxFreq {
			maxFreq = freq[v]
			mode = v
		}
	}

	return mode
}
