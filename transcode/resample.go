package transcode

import (
	"fmt"

	"github.com/RyanBlaney/sonido-emotion/algorithms/common"
	resampling "github.com/tphakala/go-audio-resampling"
)

// Resample methods accepted by NormalizerConfig.ResampleMethod
const (
	ResampleLinear = "linear"
	ResampleSinc   = "sinc"
)

// Resampler converts mono samples between sample rates. Implementations
// return exactly common.ResampledLength(len(samples), from, to) samples and
// a copy when the rates match.
type Resampler interface {
	Resample(samples []float64, from, to int) ([]float64, error)
}

// NewResampler returns the resampler for method
func NewResampler(method string) (Resampler, error) {
	switch method {
	case "", ResampleLinear:
		return NewLinearResampler(), nil
	case ResampleSinc:
		return NewSincResampler(), nil
	default:
		return nil, fmt.Errorf("unknown resample method %q", method)
	}
}

// LinearResampler interpolates linearly between neighbouring samples over
// evenly spaced source positions.
type LinearResampler struct {
	interp *common.Interpolator
}

func NewLinearResampler() *LinearResampler {
	return &LinearResampler{interp: common.NewInterpolator(common.Linear)}
}

func (r *LinearResampler) Resample(samples []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", from, to)
	}
	return r.interp.ResampleSignal(samples, from, to), nil
}

// SincResampler is a band-limited resampler backed by
// tphakala/go-audio-resampling at its high quality preset.
type SincResampler struct {
	quality resampling.QualitySpec
}

func NewSincResampler() *SincResampler {
	return &SincResampler{
		quality: resampling.QualitySpec{Preset: resampling.QualityHigh},
	}
}

// Resample runs the whole clip through a fresh resampler. The filter's group
// delay can leave the tail short, so the output is zero-padded or truncated
// to the exact resampled length.
func (r *SincResampler) Resample(samples []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("invalid sample rates %d -> %d", from, to)
	}
	if from == to || len(samples) == 0 {
		out := make([]float64, len(samples))
		copy(out, samples)
		return out, nil
	}

	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    r.quality,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	processed, err := rs.Process(samples)
	if err != nil {
		return nil, fmt.Errorf("resample %d -> %d: %w", from, to, err)
	}

	out := make([]float64, common.ResampledLength(len(samples), from, to))
	copy(out, processed)
	return out, nil
}
