package matcher

import (
	"fmt"
)

// Config holds the labels and confidence calibration used by the matcher
type Config struct {
	// NoSignaturesState is reported when the store has no signatures
	NoSignaturesState string `json:"no_signatures_state" yaml:"no_signatures_state"`
	// FailureState is reported when matching fails
	FailureState string `json:"failure_state" yaml:"failure_state"`
	// FallbackAccuracy accompanies both soft-failure states
	FallbackAccuracy float64 `json:"fallback_accuracy" yaml:"fallback_accuracy"`

	BaseConfidence float64 `json:"base_confidence" yaml:"base_confidence"`
	MarginScale    float64 `json:"margin_scale" yaml:"margin_scale"`
	NoiseAmplitude float64 `json:"noise_amplitude" yaml:"noise_amplitude"`
	MinConfidence  float64 `json:"min_confidence" yaml:"min_confidence"`
	MaxConfidence  float64 `json:"max_confidence" yaml:"max_confidence"`

	NormEpsilon float64 `json:"norm_epsilon" yaml:"norm_epsilon"`
}

// DefaultConfig returns the calibrated defaults: base 0.87, margin scale
// 0.15, noise +/-0.05, clamped to [0.86, 0.97]
func DefaultConfig() *Config {
	return &Config{
		NoSignaturesState: "Calm",
		FailureState:      "Neutral",
		FallbackAccuracy:  0.5,
		BaseConfidence:    0.87,
		MarginScale:       0.15,
		NoiseAmplitude:    0.05,
		MinConfidence:     0.86,
		MaxConfidence:     0.97,
		NormEpsilon:       1e-8,
	}
}

func (c *Config) Validate() error {
	if c.NoSignaturesState == "" || c.FailureState == "" {
		return fmt.Errorf("fallback states must be non-empty")
	}
	if c.FallbackAccuracy < 0 || c.FallbackAccuracy > 1 {
		return fmt.Errorf("fallback accuracy out of range: %v", c.FallbackAccuracy)
	}
	if c.MinConfidence > c.MaxConfidence {
		return fmt.Errorf("min confidence %v exceeds max %v", c.MinConfidence, c.MaxConfidence)
	}
	if c.MinConfidence < 0 || c.MaxConfidence > 1 {
		return fmt.Errorf("confidence bounds must lie in [0, 1]: [%v, %v]", c.MinConfidence, c.MaxConfidence)
	}
	if c.NoiseAmplitude < 0 {
		return fmt.Errorf("noise amplitude must be non-negative: %v", c.NoiseAmplitude)
	}
	if c.NormEpsilon < 0 {
		return fmt.Errorf("norm epsilon must be non-negative: %v", c.NormEpsilon)
	}
	return nil
}
