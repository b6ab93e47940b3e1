package spectral

import (
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Transform computes the spectrum of a real-valued frame, returning only the
// non-negative frequency bins (len(frame)/2 + 1 values).
type Transform interface {
	Positive(frame []float64) []complex128
}

// TransformFactory builds a Transform for a fixed frame length. The STFT
// calls it once per worker, so implementations need not be goroutine safe.
type TransformFactory func(n int) Transform

// FFT provides Fast Fourier Transform functionality using mjibson/go-dsp
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// NewDSPTransform is the TransformFactory for the go-dsp FFT
func NewDSPTransform(int) Transform {
	return NewFFT()
}

// Compute computes the full complex spectrum of x.
// go-dsp handles all sizes, including non-power-of-2.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// Positive returns the DC..Nyquist bins of the spectrum of x
func (f *FFT) Positive(x []float64) []complex128 {
	full := f.Compute(x)
	if len(full) == 0 {
		return full
	}
	return full[:len(x)/2+1]
}

// GonumFFT wraps gonum's real FFT. Not safe for concurrent use: it keeps
// work buffers between calls.
type GonumFFT struct {
	n   int
	fft *fourier.FFT
	buf []complex128
}

// NewGonumTransform is the TransformFactory for gonum's dsp/fourier
func NewGonumTransform(n int) Transform {
	return &GonumFFT{
		n:   n,
		fft: fourier.NewFFT(n),
		buf: make([]complex128, n/2+1),
	}
}

// Positive returns the DC..Nyquist bins of the spectrum of x. The returned
// slice is a fresh copy.
func (g *GonumFFT) Positive(x []float64) []complex128 {
	if len(x) != g.n {
		return nil
	}
	coeffs := g.fft.Coefficients(g.buf, x)
	out := make([]complex128, len(coeffs))
	copy(out, coeffs)
	return out
}
