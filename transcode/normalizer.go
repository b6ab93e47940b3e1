package transcode

import (
	"fmt"

	"github.com/RyanBlaney/sonido-emotion/logging"
)

// NormalizerConfig holds waveform normalization parameters
type NormalizerConfig struct {
	TargetSampleRate      int     `json:"target_sample_rate" yaml:"target_sample_rate"`
	TargetDurationSeconds float64 `json:"target_duration_seconds" yaml:"target_duration_seconds"`
	ResampleMethod        string  `json:"resample_method" yaml:"resample_method"` // "linear", "sinc"

	Decoder *DecoderConfig `json:"decoder" yaml:"decoder"`
}

// DefaultNormalizerConfig returns the 16 kHz / 4 s model input settings
func DefaultNormalizerConfig() *NormalizerConfig {
	return &NormalizerConfig{
		TargetSampleRate:      16000,
		TargetDurationSeconds: 4.0,
		ResampleMethod:        ResampleLinear,
		Decoder:               DefaultDecoderConfig(),
	}
}

// TargetLength is the exact number of samples every normalized waveform has
func (c *NormalizerConfig) TargetLength() int {
	return int(float64(c.TargetSampleRate) * c.TargetDurationSeconds)
}

// Validate checks rate, duration and resample method
func (c *NormalizerConfig) Validate() error {
	if c.TargetSampleRate <= 0 {
		return fmt.Errorf("target sample rate must be positive: %d", c.TargetSampleRate)
	}
	if c.TargetDurationSeconds <= 0 {
		return fmt.Errorf("target duration must be positive: %v", c.TargetDurationSeconds)
	}
	if c.TargetLength() <= 0 {
		return fmt.Errorf("target length is zero for %d Hz x %vs", c.TargetSampleRate, c.TargetDurationSeconds)
	}
	if _, err := NewResampler(c.ResampleMethod); err != nil {
		return err
	}
	return nil
}

// Normalizer turns arbitrary encoded audio into a mono, fixed-rate,
// fixed-length Waveform. It holds no mutable state and is safe for
// concurrent use.
type Normalizer struct {
	config    *NormalizerConfig
	decoder   Decoder
	resampler Resampler
	logger    logging.Logger
}

// NewNormalizer creates a normalizer. A nil config uses the defaults.
func NewNormalizer(config *NormalizerConfig) (*Normalizer, error) {
	if config == nil {
		config = DefaultNormalizerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid normalizer config: %w", err)
	}

	resampler, _ := NewResampler(config.ResampleMethod)
	return &Normalizer{
		config:    config,
		decoder:   NewAutoDecoder(config.Decoder),
		resampler: resampler,
		logger: logging.WithFields(logging.Fields{
			"component": "waveform_normalizer",
		}),
	}, nil
}

// NewNormalizerWithDecoder creates a normalizer that decodes with dec
func NewNormalizerWithDecoder(config *NormalizerConfig, dec Decoder) (*Normalizer, error) {
	n, err := NewNormalizer(config)
	if err != nil {
		return nil, err
	}
	if dec != nil {
		n.decoder = dec
	}
	return n, nil
}

// Config returns the normalizer configuration
func (n *Normalizer) Config() NormalizerConfig {
	return *n.config
}

// Normalize decodes raw, downmixes to mono, resamples to the target rate
// and truncates or zero-pads to exactly TargetLength samples. Undecodable
// input returns a *DecodeError.
func (n *Normalizer) Normalize(raw []byte) (*Waveform, error) {
	logger := n.logger.WithFields(logging.Fields{
		"function":  "Normalize",
		"data_size": len(raw),
	})

	audio, err := n.decoder.Decode(raw)
	if err != nil {
		return nil, err
	}
	if audio.SampleRate <= 0 || audio.Channels <= 0 {
		return nil, decodeErr(audio.Format, fmt.Sprintf("invalid stream layout: %d Hz, %d channels", audio.SampleRate, audio.Channels), nil)
	}

	mono := audio.Mono()

	target := n.config.TargetSampleRate
	if audio.SampleRate != target {
		mono, err = n.resampler.Resample(mono, audio.SampleRate, target)
		if err != nil {
			return nil, decodeErr(audio.Format, "resampling failed", err)
		}
	}

	length := n.config.TargetLength()
	out := make([]float64, length)
	copied := copy(out, mono)

	logger.Debug("Waveform normalized", logging.Fields{
		"format":        audio.Format,
		"source_rate":   audio.SampleRate,
		"source_frames": audio.Frames(),
		"channels":      audio.Channels,
		"target_rate":   target,
		"padded":        length - copied,
		"truncated":     max(0, len(mono)-length),
	})

	return NewWaveform(out, target), nil
}

// Normalize runs a default-configured Normalizer with the given target
// rate and duration
func Normalize(raw []byte, targetSampleRate int, targetDurationSeconds float64) (*Waveform, error) {
	config := DefaultNormalizerConfig()
	config.TargetSampleRate = targetSampleRate
	config.TargetDurationSeconds = targetDurationSeconds

	n, err := NewNormalizer(config)
	if err != nil {
		return nil, err
	}
	return n.Normalize(raw)
}
