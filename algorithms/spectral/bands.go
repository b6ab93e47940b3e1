package spectral

// LinearBands reduces a magnitude spectrum to a fixed number of bands by
// averaging contiguous groups of bins. It is a cheap linear stand-in for a
// perceptual mel filter bank: band edges are evenly spaced in Hz rather than
// in mel.
type LinearBands struct {
	numBands    int
	binsPerBand int
}

// NewLinearBands creates a reducer for spectra with numBins bins.
// binsPerBand = max(1, numBins / numBands).
func NewLinearBands(numBands, numBins int) *LinearBands {
	return &LinearBands{
		numBands:    numBands,
		binsPerBand: max(1, numBins/max(numBands, 1)),
	}
}

// BinsPerBand returns the group width
func (lb *LinearBands) BinsPerBand() int {
	return lb.binsPerBand
}

// Reduce averages spectrum into lb.numBands bands. Bins past the last whole
// group are dropped. When numBands exceeds the number of bins, the trailing
// bands repeat the last bin so every band has a value.
func (lb *LinearBands) Reduce(spectrum []float64) []float64 {
	bands := make([]float64, lb.numBands)
	if len(spectrum) == 0 {
		return bands
	}

	for b := range lb.numBands {
		start := b * lb.binsPerBand
		end := start + lb.binsPerBand
		if start >= len(spectrum) {
			bands[b] = spectrum[len(spectrum)-1]
			continue
		}
		end = min(end, len(spectrum))

		sum := 0.0
		for _, v := range spectrum[start:end] {
			sum += v
		}
		bands[b] = sum / float64(end-start)
	}
	return bands
}
