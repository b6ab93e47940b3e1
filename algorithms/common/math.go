package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// PopStdDev is the population (ddof=0) standard deviation
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return std
}

// Standardize rewrites data in place as (x - mean) / (popstd + epsilon).
// Constant input maps to all zeros instead of dividing by zero.
func Standardize(data []float64, epsilon float64) {
	if len(data) == 0 {
		return
	}
	mean, std := stat.PopMeanStdDev(data, nil)
	denom := std + epsilon
	for i, v := range data {
		data[i] = (v - mean) / denom
	}
}

// L2Norm returns the Euclidean norm of data
func L2Norm(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Norm(data, 2)
}

// L2Normalize scales data in place to unit length, dividing by
// norm + epsilon so a zero vector stays zero.
func L2Normalize(data []float64, epsilon float64) {
	norm := L2Norm(data)
	floats.Scale(1/(norm+epsilon), data)
}

// Decibels converts a magnitude to 20*log10(max(v, floor))
func Decibels(v, floor float64) float64 {
	return 20 * math.Log10(math.Max(v, floor))
}

// AllFinite reports whether data contains no NaN or Inf values
func AllFinite(data []float64) bool {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
