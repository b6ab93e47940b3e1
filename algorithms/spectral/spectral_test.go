package spectral

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/RyanBlaney/sonido-emotion/algorithms/windowing"
)

func sine(n int, freq, sampleRate float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return x
}

func TestFFTPositivePeak(t *testing.T) {
	// 1000 Hz at 16 kHz with 512 points lands on bin 32
	x := sine(512, 1000, 16000)
	spectrum := NewFFT().Positive(x)
	if len(spectrum) != 257 {
		t.Fatalf("expected 257 bins, got %d", len(spectrum))
	}
	peak := 0
	for i := range spectrum {
		if cmplx.Abs(spectrum[i]) > cmplx.Abs(spectrum[peak]) {
			peak = i
		}
	}
	if peak != 32 {
		t.Errorf("peak bin = %d, want 32", peak)
	}
}

func TestGonumMatchesDSP(t *testing.T) {
	x := sine(512, 440, 16000)
	a := NewFFT().Positive(x)
	b := NewGonumTransform(512).Positive(x)
	if len(a) != len(b) {
		t.Fatalf("length mismatch %d vs %d", len(a), len(b))
	}
	for i := range a {
		if cmplx.Abs(a[i]-b[i]) > 1e-6 {
			t.Fatalf("bin %d: go-dsp %v, gonum %v", i, a[i], b[i])
		}
	}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		n, win, hop, want int
	}{
		{64000, 512, 256, 249},
		{512, 512, 256, 1},
		{767, 512, 256, 1},
		{768, 512, 256, 2},
		{100, 512, 256, 1},
	}
	for _, tt := range tests {
		if got := FrameCount(tt.n, tt.win, tt.hop); got != tt.want {
			t.Errorf("FrameCount(%d, %d, %d) = %d, want %d", tt.n, tt.win, tt.hop, got, tt.want)
		}
	}
}

func TestSTFTShape(t *testing.T) {
	x := sine(16000, 440, 16000)
	res, err := NewSTFT().ComputeWithWindow(x, 512, 256, 16000, windowing.NewHann(512, true))
	if err != nil {
		t.Fatal(err)
	}
	if res.TimeFrames != 61 || len(res.Magnitude) != 61 {
		t.Errorf("frames = %d/%d, want 61", res.TimeFrames, len(res.Magnitude))
	}
	if res.FreqBins != 257 || len(res.Magnitude[0]) != 257 {
		t.Errorf("bins = %d/%d, want 257", res.FreqBins, len(res.Magnitude[0]))
	}
	if res.Padded {
		t.Error("long signal should not be padded")
	}
}

func TestSTFTShortSignalPadded(t *testing.T) {
	res, err := NewSTFT().ComputeWithWindow(sine(100, 440, 16000), 512, 256, 16000, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.TimeFrames != 1 || !res.Padded {
		t.Errorf("frames = %d padded = %v, want 1 padded frame", res.TimeFrames, res.Padded)
	}
}

func TestSTFTErrors(t *testing.T) {
	s := NewSTFT()
	if _, err := s.ComputeWithWindow(nil, 512, 256, 16000, nil); err == nil {
		t.Error("expected error for empty signal")
	}
	if _, err := s.ComputeWithWindow(make([]float64, 10), 0, 256, 16000, nil); err == nil {
		t.Error("expected error for zero window")
	}
	if _, err := s.ComputeWithWindow(make([]float64, 10), 512, 0, 16000, nil); err == nil {
		t.Error("expected error for zero hop")
	}
	// window of the wrong size fails the frame
	if _, err := s.ComputeWithWindow(make([]float64, 1024), 512, 256, 16000, windowing.NewHann(256, true)); err == nil {
		t.Error("expected error for mismatched window")
	}
}

func TestLinearBands(t *testing.T) {
	lb := NewLinearBands(64, 257)
	if lb.BinsPerBand() != 4 {
		t.Fatalf("bins per band = %d, want 4", lb.BinsPerBand())
	}

	spectrum := make([]float64, 257)
	for i := range spectrum {
		spectrum[i] = float64(i)
	}
	bands := lb.Reduce(spectrum)
	if len(bands) != 64 {
		t.Fatalf("expected 64 bands, got %d", len(bands))
	}
	// band 0 averages bins 0..3
	if bands[0] != 1.5 {
		t.Errorf("band 0 = %g, want 1.5", bands[0])
	}
	if bands[63] != (252+253+254+255)/4.0 {
		t.Errorf("band 63 = %g", bands[63])
	}
}

func TestLinearBandsMoreBandsThanBins(t *testing.T) {
	lb := NewLinearBands(8, 5)
	bands := lb.Reduce([]float64{1, 2, 3, 4, 5})
	want := []float64{1, 2, 3, 4, 5, 5, 5, 5}
	for i := range want {
		if bands[i] != want[i] {
			t.Fatalf("bands = %v, want %v", bands, want)
		}
	}
}

func TestMelFilterBank(t *testing.T) {
	ms := NewMelScale()
	if mel := ms.HzToMel(1000); math.Abs(mel-1000.0) > 1.0 {
		t.Errorf("HzToMel(1000) = %f", mel)
	}
	if hz := ms.MelToHz(ms.HzToMel(440)); math.Abs(hz-440) > 1e-6 {
		t.Errorf("round trip = %f", hz)
	}

	bank := ms.CreateMelFilterBank(64, 512, 16000, 0, 8000)
	if len(bank) != 64 {
		t.Fatalf("expected 64 filters, got %d", len(bank))
	}
	for i, f := range bank {
		if len(f) != 257 {
			t.Fatalf("filter %d has %d bins", i, len(f))
		}
		nonZero := false
		for _, v := range f {
			if v > 0 {
				nonZero = true
				break
			}
		}
		if !nonZero {
			t.Errorf("filter %d is all zeros", i)
		}
	}

	out := ms.ApplyFilterBank(NewPowerSpectrum().Compute(make([]float64, 257)), bank)
	if len(out) != 64 {
		t.Errorf("ApplyFilterBank returned %d values", len(out))
	}
}

func TestPowerSpectrumFromSTFT(t *testing.T) {
	res := &STFTResult{
		Magnitude:  [][]float64{{1, -2, 0.5}, {3, 0, 0}},
		TimeFrames: 2,
		FreqBins:   3,
	}
	power := NewPowerSpectrum().ComputeFromSTFT(res)
	want := [][]float64{{1, 4, 0.25}, {9, 0, 0}}
	for i := range want {
		for j := range want[i] {
			if power[i][j] != want[i][j] {
				t.Errorf("power[%d][%d] = %g, want %g", i, j, power[i][j], want[i][j])
			}
		}
	}
	if NewPowerSpectrum().ComputeFromSTFT(nil) != nil {
		t.Error("nil STFT result should give nil power")
	}
}
