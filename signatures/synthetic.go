package signatures

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/RyanBlaney/sonido-emotion/algorithms/common"
)

const (
	// SyntheticSeed seeds the fallback generator
	SyntheticSeed uint64 = 42
	// SyntheticDim is the fallback vector length
	SyntheticDim = 2048
	// SyntheticOffset is the per-label constant shift that keeps the
	// fallback signatures apart. Label i is shifted by i*SyntheticOffset.
	SyntheticOffset = 0.15
	// SyntheticScale scales the standard normal draws
	SyntheticScale = 0.5

	normEpsilon = 1e-8
)

// SyntheticLabels are the fallback labels in priority order
var SyntheticLabels = []string{"Neutral", "Happy", "Sad", "Anger", "Disgust"}

// SyntheticParams configures Synthetic
type SyntheticParams struct {
	Seed   uint64   `json:"seed" yaml:"seed"`
	Labels []string `json:"labels" yaml:"labels"`
	Dim    int      `json:"dim" yaml:"dim"`
	Offset float64  `json:"offset" yaml:"offset"`
}

// DefaultSyntheticParams returns the fallback generator settings
func DefaultSyntheticParams() SyntheticParams {
	labels := make([]string, len(SyntheticLabels))
	copy(labels, SyntheticLabels)
	return SyntheticParams{
		Seed:   SyntheticSeed,
		Labels: labels,
		Dim:    SyntheticDim,
		Offset: SyntheticOffset,
	}
}

// Validate checks that the params describe a non-empty set
func (p SyntheticParams) Validate() error {
	if p.Dim <= 0 {
		return fmt.Errorf("synthetic dim must be positive: %d", p.Dim)
	}
	if len(p.Labels) == 0 {
		return errors.New("synthetic labels must not be empty")
	}
	if math.IsNaN(p.Offset) || math.IsInf(p.Offset, 0) {
		return fmt.Errorf("synthetic offset must be finite: %v", p.Offset)
	}
	return nil
}

// Synthetic builds a deterministic set: for label i the vector is
// N(0,1)*0.5 + i*Offset, scaled to unit length. The same params always
// produce the same set.
func Synthetic(p SyntheticParams) (*Set, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed))

	sigs := make([]Signature, len(p.Labels))
	raw := make([]float64, p.Dim)
	for i, label := range p.Labels {
		shift := float64(i) * p.Offset
		for j := range raw {
			raw[j] = rng.NormFloat64()*SyntheticScale + shift
		}
		common.L2Normalize(raw, normEpsilon)

		vec := make([]float32, p.Dim)
		for j, v := range raw {
			vec[j] = float32(v)
		}
		sigs[i] = Signature{Label: label, Vector: vec}
	}

	return NewSet(sigs)
}
