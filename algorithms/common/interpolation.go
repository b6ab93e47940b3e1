package common

import (
	"math"
)

// InterpolationType defines interpolation method
type InterpolationType int

const (
	Linear InterpolationType = iota
	Nearest
)

// Interpolator samples a discrete signal at fractional indices
type Interpolator struct {
	method InterpolationType
}

// NewInterpolator creates a new interpolator
func NewInterpolator(method InterpolationType) *Interpolator {
	return &Interpolator{
		method: method,
	}
}

// Interpolate performs interpolation at fractional index. Indices outside
// [0, len-1] clamp to the end samples.
func (interp *Interpolator) Interpolate(data []float64, index float64) float64 {
	switch interp.method {
	case Nearest:
		return interp.nearestInterpolate(data, index)
	default:
		return interp.linearInterpolate(data, index)
	}
}

func (interp *Interpolator) linearInterpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)

	return data[i] + frac*(data[i+1]-data[i])
}

func (interp *Interpolator) nearestInterpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	i := int(math.Round(index))
	return data[max(0, min(i, len(data)-1))]
}

// ResampledLength is ceil(n * targetRate / originalRate)
func ResampledLength(n, originalRate, targetRate int) int {
	if n <= 0 || originalRate <= 0 || targetRate <= 0 {
		return 0
	}
	return int(math.Ceil(float64(n) * float64(targetRate) / float64(originalRate)))
}

// ResampleSignal resamples a signal to a new sample rate by sampling the
// source at ResampledLength evenly spaced positions over [0, len-1].
// Equal rates return a copy of the signal.
func (interp *Interpolator) ResampleSignal(signal []float64, originalRate, targetRate int) []float64 {
	if len(signal) == 0 || originalRate <= 0 || targetRate <= 0 {
		return []float64{}
	}

	if originalRate == targetRate {
		result := make([]float64, len(signal))
		copy(result, signal)
		return result
	}

	return interp.InterpolateArray(signal, ResampledLength(len(signal), originalRate, targetRate))
}

// InterpolateArray interpolates an entire array to a new length, with the
// first and last output samples aligned to the first and last input samples
func (interp *Interpolator) InterpolateArray(data []float64, newLength int) []float64 {
	if len(data) == 0 || newLength <= 0 {
		return []float64{}
	}

	if newLength == len(data) {
		result := make([]float64, len(data))
		copy(result, data)
		return result
	}

	result := make([]float64, newLength)
	if newLength == 1 {
		result[0] = data[0]
		return result
	}

	ratio := float64(len(data)-1) / float64(newLength-1)
	for i := range result {
		result[i] = interp.Interpolate(data, float64(i)*ratio)
	}

	return result
}

// EvenlySpacedIndices returns count integer indices spread evenly over
// [0, n-1], computed as floor(i*(n-1)/(count-1)). The first index is 0 and
// the last is n-1. count == 1 yields [0].
func EvenlySpacedIndices(n, count int) []int {
	if n <= 0 || count <= 0 {
		return []int{}
	}
	indices := make([]int, count)
	if count == 1 {
		return indices
	}
	for i := range indices {
		indices[i] = i * (n - 1) / (count - 1)
	}
	return indices
}
