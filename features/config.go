package features

import (
	"fmt"

	"github.com/RyanBlaney/sonido-emotion/algorithms/windowing"
)

// Extraction methods accepted by Config.Method
const (
	MethodBanded = "banded"
	MethodMel    = "mel"
)

// Config holds spectral feature extraction parameters
type Config struct {
	NFFT      int    `json:"n_fft" yaml:"n_fft"`
	HopLength int    `json:"hop_length" yaml:"hop_length"`
	NMels     int    `json:"n_mels" yaml:"n_mels"`
	Method    string `json:"method" yaml:"method"` // "banded", "mel"
	Window    string `json:"window" yaml:"window"` // "hann", "hamming"

	// Mel filter bank range, used by the mel method only. Zero FMax means
	// the Nyquist frequency.
	FMin float64 `json:"f_min" yaml:"f_min"`
	FMax float64 `json:"f_max" yaml:"f_max"`
}

// DefaultConfig returns n_fft 512, hop 256, 64 bands with the banded method
func DefaultConfig() *Config {
	return &Config{
		NFFT:      512,
		HopLength: 256,
		NMels:     64,
		Method:    MethodBanded,
		Window:    string(windowing.KindHann),
		FMin:      0,
		FMax:      0,
	}
}

func (c *Config) Validate() error {
	if c.NFFT <= 1 {
		return fmt.Errorf("n_fft must be greater than 1: %d", c.NFFT)
	}
	if c.HopLength <= 0 {
		return fmt.Errorf("hop length must be positive: %d", c.HopLength)
	}
	if c.NMels <= 0 {
		return fmt.Errorf("n_mels must be positive: %d", c.NMels)
	}
	if c.FMin < 0 || (c.FMax != 0 && c.FMax <= c.FMin) {
		return fmt.Errorf("invalid mel range [%v, %v]", c.FMin, c.FMax)
	}
	switch c.Method {
	case "", MethodBanded, MethodMel:
	default:
		return fmt.Errorf("unknown feature method %q", c.Method)
	}
	switch windowing.Kind(c.Window) {
	case "", windowing.KindHann, windowing.KindHamming:
	default:
		return fmt.Errorf("unknown window %q", c.Window)
	}
	return nil
}

// Frames returns the number of time frames produced for n samples
func (c *Config) Frames(n int) int {
	if n < c.NFFT {
		return 1
	}
	return 1 + (n-c.NFFT)/c.HopLength
}
