package statistics

import "math"

// Mean computes the arithmetic mean of a float64 slice.
// Returns 0 for empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Variance computes the sample variance (Bessel's correction).
// Returns 0 for fewer than 2 data points.
func Variance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(n-1)
}

// StdDev computes the sample standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// StdErr computes the standard error of the mean.
// Returns 0 for fewer than 2 data points.
func StdErr(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	return StdDev(values) / math.Sqrt(float64(n))
}
