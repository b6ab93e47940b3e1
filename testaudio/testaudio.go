// Package testaudio synthesizes tone clips and encodes them as WAV. It backs
// the gen-audio command and the fixtures used across the package tests.
package testaudio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Tone describes a harmonic tone with additive Gaussian noise
type Tone struct {
	Frequency float64
	Amplitude float64
	Harmonics int     // number of harmonics including the fundamental, 0 means 1
	Noise     float64 // standard deviation of the added noise
}

// Variant is one labelled tone family written by GenerateVaried
type Variant struct {
	Label     string
	Frequency float64
	Amplitude float64
}

// DefaultVariants are the tone families used for confidence variance checks
var DefaultVariants = []Variant{
	{Label: "angry", Frequency: 3520, Amplitude: 0.7},
	{Label: "happy", Frequency: 1760, Amplitude: 0.6},
	{Label: "sad", Frequency: 880, Amplitude: 0.5},
	{Label: "neutral", Frequency: 440, Amplitude: 0.55},
}

// Sine returns seconds of a pure sine at sampleRate
func Sine(frequency, amplitude, seconds float64, sampleRate int) []float64 {
	n := int(float64(sampleRate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate))
	}
	return out
}

// Generate renders tone for seconds at sampleRate. Sample times are spread
// evenly over [0, seconds] end points included. Each harmonic h gets
// amplitude Amplitude/h and a random phase; the result is peak-normalized
// back to Amplitude.
func Generate(rng *rand.Rand, tone Tone, seconds float64, sampleRate int) []float64 {
	n := int(float64(sampleRate) * seconds)
	if n <= 0 {
		return []float64{}
	}

	step := 0.0
	if n > 1 {
		step = seconds / float64(n-1)
	}

	harmonics := max(1, tone.Harmonics)
	out := make([]float64, n)
	for h := 1; h <= harmonics; h++ {
		phase := rng.Float64() * 2 * math.Pi
		amp := tone.Amplitude / float64(h)
		w := 2 * math.Pi * tone.Frequency * float64(h)
		for i := range out {
			out[i] += amp * math.Sin(w*float64(i)*step+phase)
		}
	}

	peak := 0.0
	for i := range out {
		if tone.Noise > 0 {
			out[i] += rng.NormFloat64() * tone.Noise
		}
		peak = max(peak, math.Abs(out[i]))
	}

	scale := tone.Amplitude / (peak + 1e-8)
	for i := range out {
		out[i] *= scale
	}
	return out
}

// EncodeWAV writes interleaved samples in [-1, 1] as integer PCM WAV.
// Supported bit depths are 8, 16, 24 and 32.
func EncodeWAV(w io.WriteSeeker, samples []float64, sampleRate, channels, bitDepth int) error {
	if channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", channels)
	}
	if bitDepth != 8 && bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}

	full := float64(int64(1)<<(bitDepth-1)) - 1
	data := make([]int, len(samples))
	for i, s := range samples {
		s = max(-1, min(1, s))
		v := int(math.Round(s * full))
		if bitDepth == 8 {
			v += 128
		}
		data[i] = v
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to close encoder: %w", err)
	}
	return nil
}

// WAVBytes encodes samples in memory
func WAVBytes(samples []float64, sampleRate, channels, bitDepth int) ([]byte, error) {
	ws := &memFile{}
	if err := EncodeWAV(ws, samples, sampleRate, channels, bitDepth); err != nil {
		return nil, err
	}
	return ws.buf, nil
}

// MustWAV is WAVBytes for fixtures; it panics on error
func MustWAV(samples []float64, sampleRate, channels, bitDepth int) []byte {
	b, err := WAVBytes(samples, sampleRate, channels, bitDepth)
	if err != nil {
		panic(err)
	}
	return b
}

// GenerateVaried writes perVariant clips for each variant into dir as
// test_<label>_var<n>.wav (16-bit mono) and returns the paths written.
func GenerateVaried(dir string, variants []Variant, perVariant int, seed uint64, sampleRate int, seconds float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	var paths []string
	for _, v := range variants {
		for n := 1; n <= perVariant; n++ {
			tone := Tone{
				Frequency: v.Frequency * (1 + (rng.Float64()*0.2 - 0.1)),
				Amplitude: v.Amplitude,
				Harmonics: 3,
				Noise:     0.02,
			}
			samples := Generate(rng, tone, seconds, sampleRate)

			path := filepath.Join(dir, fmt.Sprintf("test_%s_var%d.wav", v.Label, n))
			if err := writeFile(path, samples, sampleRate); err != nil {
				return paths, err
			}
			paths = append(paths, path)
		}
	}
	return paths, nil
}

func writeFile(path string, samples []float64, sampleRate int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return EncodeWAV(f, samples, sampleRate, 1, 16)
}

// memFile is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes on Close.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	if end := m.pos + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	n := copy(m.buf[m.pos:], p)
	m.pos += n
	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("negative position")
	}
	m.pos = int(abs)
	return abs, nil
}
