package spectral

import "gonum.org/v1/gonum/floats"

// PowerSpectrum squares magnitude spectra
type PowerSpectrum struct{}

func NewPowerSpectrum() *PowerSpectrum {
	return &PowerSpectrum{}
}

// Compute returns |X|^2 for one magnitude frame
func (ps *PowerSpectrum) Compute(magnitude []float64) []float64 {
	return floats.MulTo(make([]float64, len(magnitude)), magnitude, magnitude)
}

// ComputeFromSTFT returns the power spectrogram, one row per STFT frame
func (ps *PowerSpectrum) ComputeFromSTFT(res *STFTResult) [][]float64 {
	if res == nil {
		return nil
	}
	power := make([][]float64, len(res.Magnitude))
	for t, frame := range res.Magnitude {
		power[t] = ps.Compute(frame)
	}
	return power
}
