// Package features converts fixed-length waveforms into standardized
// log-spectral matrices.
package features

import (
	"fmt"

	"github.com/RyanBlaney/sonido-emotion/algorithms/common"
	"github.com/RyanBlaney/sonido-emotion/algorithms/windowing"
	"github.com/RyanBlaney/sonido-emotion/logging"
	"github.com/RyanBlaney/sonido-emotion/transcode"
)

const (
	// magnitudeFloor keeps log10 finite on silent bins
	magnitudeFloor = 1e-10
	// stdEpsilon guards standardization of constant matrices
	stdEpsilon = 1e-6
)

// Extractor produces a (NMels x T) feature matrix from a waveform.
// Implementations hold no per-call state and are safe for concurrent use.
type Extractor interface {
	Extract(w *transcode.Waveform) (*Matrix, error)
	Name() string
}

// NewExtractor returns the extractor selected by config.Method
func NewExtractor(config *Config) (Extractor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "feature_extractor_factory",
		"function":  "NewExtractor",
		"method":    config.Method,
	})

	switch config.Method {
	case MethodMel:
		logger.Debug("Creating mel feature extractor")
		return NewMelExtractor(config)
	default:
		logger.Debug("Creating banded feature extractor")
		return NewBandedExtractor(config)
	}
}

func checkWaveform(w *transcode.Waveform) error {
	if w == nil || len(w.Samples) == 0 {
		return fmt.Errorf("empty waveform")
	}
	if w.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", w.SampleRate)
	}
	return nil
}

// frameWindow builds the symmetric analysis window, Hann unless configured
// otherwise
func frameWindow(c *Config) (windowing.Window, error) {
	return windowing.New(windowing.Kind(c.Window), c.NFFT, true)
}

// standardize flattens per-frame band rows into a (bands x frames) matrix
// and applies global (x - mean) / (std + eps) standardization.
func standardize(frames [][]float64, bands int) *Matrix {
	numFrames := len(frames)
	data := make([]float64, bands*numFrames)
	for t, row := range frames {
		for b := range bands {
			data[b*numFrames+t] = row[b]
		}
	}

	common.Standardize(data, stdEpsilon)

	m := NewMatrix(bands, numFrames)
	for i, v := range data {
		m.Data[i] = float32(v)
	}
	return m
}
