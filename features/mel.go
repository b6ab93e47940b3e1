package features

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-emotion/algorithms/spectral"
	"github.com/RyanBlaney/sonido-emotion/logging"
	"github.com/RyanBlaney/sonido-emotion/transcode"
)

// powerFloor keeps log10 finite on empty mel bands
const powerFloor = 1e-10

// MelExtractor computes a power STFT with gonum's FFT and applies a
// triangular HTK mel filter bank. Output shape and standardization match
// BandedExtractor, so the two are interchangeable in front of the matcher.
type MelExtractor struct {
	config *Config
	stft   *spectral.STFT
	power  *spectral.PowerSpectrum
	mel    *spectral.MelScale
	logger logging.Logger
}

// NewMelExtractor creates a mel filter bank extractor
func NewMelExtractor(config *Config) (*MelExtractor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid feature config: %w", err)
	}
	return &MelExtractor{
		config: config,
		stft:   spectral.NewSTFTWithTransform(spectral.NewGonumTransform),
		power:  spectral.NewPowerSpectrum(),
		mel:    spectral.NewMelScale(),
		logger: logging.WithFields(logging.Fields{
			"component": "mel_extractor",
		}),
	}, nil
}

func (e *MelExtractor) Name() string { return MethodMel }

func (e *MelExtractor) Extract(w *transcode.Waveform) (*Matrix, error) {
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

	filterBank := e.mel.CreateMelFilterBank(e.config.NMels, e.config.NFFT, w.SampleRate, e.config.FMin, e.config.FMax)
	if len(filterBank) != e.config.NMels {
		return nil, fmt.Errorf("mel filter bank has %d filters, want %d", len(filterBank), e.config.NMels)
	}

	powerFrames := e.power.ComputeFromSTFT(result)
	frames := make([][]float64, len(powerFrames))
	for t, ps := range powerFrames {
		bands := e.mel.ApplyFilterBank(ps, filterBank)
		// 10*log10 of power is 20*log10 of magnitude
		for b, v := range bands {
			bands[b] = 10 * math.Log10(max(v, powerFloor))
		}
		frames[t] = bands
	}

	m := standardize(frames, e.config.NMels)

	e.logger.Debug("Mel features extracted", logging.Fields{
		"bands":  m.Bands,
		"frames": m.Frames,
		"padded": result.Padded,
	})
	return m, nil
}
