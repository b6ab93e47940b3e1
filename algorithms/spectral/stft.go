package spectral

import (
	"fmt"
	"math/cmplx"
	"runtime"
	"sync"

	"github.com/RyanBlaney/sonido-emotion/logging"
)

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	newTransform TransformFactory
	logger       logging.Logger
}

// STFTResult holds the magnitude spectrogram produced by the STFT
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	Padded         bool        `json:"padded"`          // Signal was shorter than one window
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// Window interface for windowing functions
type Window interface {
	ApplyInPlace(signal []float64) error
}

// NewSTFT creates a new STFT calculator backed by the go-dsp FFT
func NewSTFT() *STFT {
	return NewSTFTWithTransform(NewDSPTransform)
}

// NewSTFTWithTransform creates an STFT that uses factory for per-frame
// transforms
func NewSTFTWithTransform(factory TransformFactory) *STFT {
	if factory == nil {
		factory = NewDSPTransform
	}
	return &STFT{
		newTransform: factory,
		logger: logging.WithFields(logging.Fields{
			"component": "stft",
		}),
	}
}

// FrameCount returns the number of frames the STFT produces for a signal of
// length n: 1 + (n - windowSize) / hopSize, or 1 when the signal is shorter
// than one window.
func FrameCount(n, windowSize, hopSize int) int {
	if n < windowSize {
		return 1
	}
	return 1 + (n-windowSize)/hopSize
}

// ComputeWithWindow computes the magnitude STFT with parallel processing.
// Signals shorter than windowSize are zero-padded to a single frame.
func (s *STFT) ComputeWithWindow(signal []float64, windowSize int, hopSize int, sampleRate int, window Window) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}

	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	padded := false
	if len(signal) < windowSize {
		ext := make([]float64, windowSize)
		copy(ext, signal)
		signal = ext
		padded = true
	}

	numFrames := FrameCount(len(signal), windowSize, hopSize)

	// Positive frequencies only
	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)
	for i := range numFrames {
		magnitude[i] = make([]float64, freqBins)
	}

	numWorkers := s.getOptimalWorkerCount(numFrames)

	jobs := make(chan int, numFrames)
	errs := make(chan error, numWorkers)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			transform := s.newTransform(windowSize)
			// Reuse frame buffer for this worker
			frameBuffer := make([]float64, windowSize)

			for frameIdx := range jobs {
				start := frameIdx * hopSize
				copy(frameBuffer, signal[start:start+windowSize])

				if window != nil {
					if err := window.ApplyInPlace(frameBuffer); err != nil {
						errs <- fmt.Errorf("frame %d: %w", frameIdx, err)
						// drain so the producer never blocks
						for range jobs {
						}
						return
					}
				}

				spectrum := transform.Positive(frameBuffer)
				for i := 0; i < freqBins && i < len(spectrum); i++ {
					magnitude[frameIdx][i] = cmplx.Abs(spectrum[i])
				}
			}
		}()
	}

	for frameIdx := range numFrames {
		jobs <- frameIdx
	}
	close(jobs)

	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		s.logger.Error(err, "STFT frame failed", logging.Fields{
			"window_size": windowSize,
			"hop_size":    hopSize,
		})
		return nil, err
	}

	result := &STFTResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		Padded:         padded,
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}

	return result, nil
}

// getOptimalWorkerCount determines the optimal number of workers based on workload
func (s *STFT) getOptimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	// For medium workloads, use most CPUs
	if numFrames < 1000 {
		return max(1, min(numCPU, 8))
	}

	return max(1, numCPU)
}
