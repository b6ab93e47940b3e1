package stats

import (
	"gonum.org/v1/gonum/floats"
)

// CosineSimilarityFunc returns dot(a, b) / (|a| * |b|). It is 0 when
// either vector has zero norm, and is symmetric in its arguments.
// Vectors of different length are compared over their common prefix.
func CosineSimilarityFunc(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0.0
	}
	a, b = a[:n], b[:n]

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return floats.Dot(a, b) / (normA * normB)
}

// ArgMax returns the index of the largest value. Ties resolve to the
// earliest index. Returns -1 for an empty slice.
func ArgMax(values []float64) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}
