package features

import (
	"fmt"

	"github.com/RyanBlaney/sonido-emotion/algorithms/common"
	"github.com/RyanBlaney/sonido-emotion/algorithms/spectral"
	"github.com/RyanBlaney/sonido-emotion/logging"
	"github.com/RyanBlaney/sonido-emotion/transcode"
)

// BandedExtractor computes a magnitude STFT with a symmetric Hann window
// (Hamming when Config.Window says so), averages contiguous groups of FFT
// bins into NMels bands, converts to dB and standardizes. The bands are linear in Hz, which approximates a mel
// filter bank.
type BandedExtractor struct {
	config *Config
	stft   *spectral.STFT
	logger logging.Logger
}

// NewBandedExtractor creates the default extractor
func NewBandedExtractor(config *Config) (*BandedExtractor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}
	return &BandedExtractor{
		config: config,
		stft:   spectral.NewSTFT(),
		logger: logging.WithFields(logging.Fields{
			"component": "banded_extractor",
		}),
	}, nil
}

func (e *BandedExtractor) Name() string { return MethodBanded }

func (e *BandedExtractor) Extract(w *transcode.Waveform) (*Matrix, error) {
	if err := checkWaveform(w); err != nil {
		return nil, err
	}

	window, err := frameWindow(e.config)
	if err != nil {
		return nil, err
	}

	result, err := e.stft.ComputeWithWindow(w.Float64(), e.config.NFFT, e.config.HopLength, w.SampleRate, window)
	if err != nil {
		return nil, fmt.Errorf("stft: %w", err)
	}

	reducer := spectral.NewLinearBands(e.config.NMels, result.FreqBins)
	frames := make([][]float64, result.TimeFrames)
	for t, spectrum := range result.Magnitude {
		bands := reducer.Reduce(spectrum)
		for b, v := range bands {
			bands[b] = common.Decibels(v, magnitudeFloor)
		}
		frames[t] = bands
	}

	m := standardize(frames, e.config.NMels)

	e.logger.Debug("Features extracted", logging.Fields{
		"bands":         m.Bands,
		"frames":        m.Frames,
		"bins_per_band": reducer.BinsPerBand(),
		"padded":        result.Padded,
	})
	return m, nil
}
