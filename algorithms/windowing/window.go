package windowing

import (
	"fmt"
	"math"
)

// Kind names a supported window function
type Kind string

const (
	KindHann    Kind = "hann"
	KindHamming Kind = "hamming"
)

// Window is a precomputed window function of fixed size
type Window interface {
	Apply(signal []float64) []float64
	ApplyInPlace(signal []float64) error
	Coefficients() []float64
	Size() int
	Kind() Kind
}

// New returns a window of the given kind. Symmetric windows divide by
// size-1 (numpy.hanning style); periodic windows divide by size.
func New(kind Kind, size int, symmetric bool) (Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive: %d", size)
	}
	switch kind {
	case KindHann, "":
		return NewHann(size, symmetric), nil
	case KindHamming:
		return NewHamming(size, symmetric), nil
	default:
		return nil, fmt.Errorf("unsupported window type: %q", kind)
	}
}

// RaisedCosine is the generalized Hann/Hamming family:
//
//	w[i] = alpha - (1 - alpha) * cos(2*pi*i / d)
//
// with alpha = 0.5 for Hann and 0.54 for Hamming.
type RaisedCosine struct {
	kind         Kind
	alpha        float64
	symmetric    bool
	coefficients []float64
}

// NewHann creates a new Hann window
func NewHann(size int, symmetric bool) *RaisedCosine {
	return newRaisedCosine(KindHann, 0.5, size, symmetric)
}

// NewHamming creates a new Hamming window
func NewHamming(size int, symmetric bool) *RaisedCosine {
	return newRaisedCosine(KindHamming, 0.54, size, symmetric)
}

func newRaisedCosine(kind Kind, alpha float64, size int, symmetric bool) *RaisedCosine {
	w := &RaisedCosine{
		kind:         kind,
		alpha:        alpha,
		symmetric:    symmetric,
		coefficients: make([]float64, max(size, 0)),
	}

	if size == 1 {
		// numpy returns [1] for a single-point window
		w.coefficients[0] = 1
		return w
	}

	denominator := float64(size)
	if symmetric {
		denominator = float64(size - 1)
	}

	for i := range size {
		w.coefficients[i] = alpha - (1-alpha)*math.Cos(2*math.Pi*float64(i)/denominator)
	}
	return w
}

// Apply applies the window to a signal (creates new array).
// Returns nil when the signal length does not match the window.
func (w *RaisedCosine) Apply(signal []float64) []float64 {
	if len(signal) != len(w.coefficients) {
		return nil
	}

	windowed := make([]float64, len(signal))
	for i, c := range w.coefficients {
		windowed[i] = signal[i] * c
	}
	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (w *RaisedCosine) ApplyInPlace(signal []float64) error {
	if len(signal) != len(w.coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(w.coefficients))
	}

	for i, c := range w.coefficients {
		signal[i] *= c
	}
	return nil
}

// Coefficients returns a copy of the window coefficients
func (w *RaisedCosine) Coefficients() []float64 {
	coeffs := make([]float64, len(w.coefficients))
	copy(coeffs, w.coefficients)
	return coeffs
}

// Size returns the window size
func (w *RaisedCosine) Size() int {
	return len(w.coefficients)
}

// Kind returns the window type
func (w *RaisedCosine) Kind() Kind {
	return w.kind
}
