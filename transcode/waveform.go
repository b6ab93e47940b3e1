package transcode

import (
	"errors"
	"fmt"
	"time"
)

// ErrDecode matches every *DecodeError via errors.Is
var ErrDecode = errors.New("audio decode failed")

// DecodeError reports bytes that are not a recognized or parseable audio
// container. It is the only error the normalizer surfaces to callers.
type DecodeError struct {
	Format string // container the decoder attempted, "" when unrecognized
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := "decode audio"
	if e.Format != "" {
		msg += " (" + e.Format + ")"
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDecode) true for any DecodeError
func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func decodeErr(format, reason string, err error) *DecodeError {
	return &DecodeError{Format: format, Reason: reason, Err: err}
}

// AudioData represents decoded audio at its native rate and channel layout
type AudioData struct {
	PCM        []float64 `json:"-"` // interleaved samples in [-1, 1]
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"`
	Format     string    `json:"format"`
}

// Frames returns the number of samples per channel
func (a *AudioData) Frames() int {
	if a.Channels <= 0 {
		return 0
	}
	return len(a.PCM) / a.Channels
}

// Duration returns the decoded length
func (a *AudioData) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(a.Frames()) * time.Second / time.Duration(a.SampleRate)
}

// Mono averages interleaved channels into a single channel. Mono input is
// copied unchanged.
func (a *AudioData) Mono() []float64 {
	frames := a.Frames()
	mono := make([]float64, frames)
	if a.Channels == 1 {
		copy(mono, a.PCM)
		return mono
	}

	ch := float64(a.Channels)
	for i := range frames {
		sum := 0.0
		for c := range a.Channels {
			sum += a.PCM[i*a.Channels+c]
		}
		mono[i] = sum / ch
	}
	return mono
}

// Waveform is mono audio at a fixed sample rate and fixed length
type Waveform struct {
	Samples    []float32 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// Duration returns len(Samples) / SampleRate
func (w *Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(w.Samples)) * time.Second / time.Duration(w.SampleRate)
}

// Float64 returns the samples widened to float64
func (w *Waveform) Float64() []float64 {
	out := make([]float64, len(w.Samples))
	for i, s := range w.Samples {
		out[i] = float64(s)
	}
	return out
}

// NewWaveform builds a waveform from float64 samples
func NewWaveform(samples []float64, sampleRate int) *Waveform {
	w := &Waveform{
		Samples:    make([]float32, len(samples)),
		SampleRate: sampleRate,
	}
	for i, s := range samples {
		w.Samples[i] = float32(s)
	}
	return w
}

func (w *Waveform) String() string {
	return fmt.Sprintf("Waveform{%d samples @ %d Hz}", len(w.Samples), w.SampleRate)
}
