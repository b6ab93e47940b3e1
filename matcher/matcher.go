// Package matcher scores feature inputs against reference signatures by
// cosine similarity and reports a calibrated confidence.
package matcher

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/RyanBlaney/sonido-emotion/algorithms/common"
	"github.com/RyanBlaney/sonido-emotion/algorithms/stats"
	"github.com/RyanBlaney/sonido-emotion/features"
	"github.com/RyanBlaney/sonido-emotion/logging"
	"github.com/RyanBlaney/sonido-emotion/signatures"
)

var (
	ErrEmptyInput = errors.New("empty model input")
	ErrNonFinite  = errors.New("model input contains NaN or Inf")
)

// SetProvider supplies the signature set. *signatures.Store satisfies it.
type SetProvider interface {
	Load() *signatures.Set
}

// Option configures a Matcher
type Option func(*Matcher)

// WithRand sets the source of confidence noise. Tests pass a seeded
// generator for reproducible accuracies.
func WithRand(r *rand.Rand) Option {
	return func(m *Matcher) {
		if r != nil {
			m.rng = r
		}
	}
}

// WithConfig overrides the default calibration
func WithConfig(c *Config) Option {
	return func(m *Matcher) {
		if c != nil {
			m.config = c
		}
	}
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(m *Matcher) {
		if l != nil {
			m.logger = l
		}
	}
}

// Matcher is safe for concurrent use. The only mutable state is the noise
// generator, which is guarded by a mutex.
type Matcher struct {
	store  SetProvider
	config *Config
	logger logging.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a matcher over store
func New(store SetProvider, opts ...Option) (*Matcher, error) {
	m := &Matcher{
		store:  store,
		config: DefaultConfig(),
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: logging.WithFields(logging.Fields{
			"component": "signature_matcher",
		}),
	}
	for _, opt := range opts {
		opt(m)
	}

	if err := m.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher config: %w", err)
	}
	return m, nil
}

// Classify scores in against every signature and returns the best label.
// It never fails: an empty store yields the no-signatures state and any
// matching error or panic yields the failure state, both at the fallback
// accuracy.
func (m *Matcher) Classify(in *features.ModelInput) (res Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = m.failure(fmt.Errorf("panic during matching: %v", r))
		}
		res.Elapsed = time.Since(start)
	}()

	set := m.loadSet()
	if set.IsEmpty() {
		m.logger.Warn("No signatures available, returning default state", logging.Fields{
			"state": m.config.NoSignaturesState,
		})
		return Result{
			State:    m.config.NoSignaturesState,
			Accuracy: m.config.FallbackAccuracy,
			Outcome:  OutcomeNoSignatures,
		}
	}

	res, err := m.match(in, set)
	if err != nil {
		return m.failure(err)
	}
	return res
}

func (m *Matcher) loadSet() *signatures.Set {
	if m.store == nil {
		return signatures.Empty()
	}
	return m.store.Load()
}

func (m *Matcher) failure(err error) Result {
	m.logger.Error(err, "Signature matching failed", logging.Fields{
		"state": m.config.FailureState,
	})
	return Result{
		State:    m.config.FailureState,
		Accuracy: m.config.FallbackAccuracy,
		Outcome:  OutcomeInferenceFailure,
		Err:      err,
	}
}

func (m *Matcher) match(in *features.ModelInput, set *signatures.Set) (Result, error) {
	flat := in.Flatten()
	if len(flat) == 0 {
		return Result{}, ErrEmptyInput
	}

	vec := make([]float64, len(flat))
	for i, v := range flat {
		vec[i] = float64(v)
	}
	if !common.AllFinite(vec) {
		return Result{}, ErrNonFinite
	}

	dim := set.Dim()
	reconciled := len(vec) != dim
	if reconciled {
		m.logger.Debug("Input reconciled to signature dimension", logging.Fields{
			"input_len":  len(vec),
			"dim":        dim,
			"reconciled": true,
		})
		vec = Reconcile(vec, dim)
	}
	common.L2Normalize(vec, m.config.NormEpsilon)

	scores := make([]float64, set.Len())
	sims := make([]Similarity, set.Len())
	ref := make([]float64, dim)
	for i := range set.Len() {
		sig := set.At(i)
		for j, v := range sig.Vector {
			ref[j] = float64(v)
		}
		scores[i] = stats.CosineSimilarityFunc(vec, ref)
		sims[i] = Similarity{Label: sig.Label, Score: scores[i]}
	}

	best := stats.ArgMax(scores)
	margin := scores[best] - runnerUp(scores, best)
	accuracy := m.confidence(margin)

	m.logger.Debug("Input matched", logging.Fields{
		"state":    sims[best].Label,
		"score":    scores[best],
		"margin":   margin,
		"accuracy": accuracy,
	})

	return Result{
		State:        sims[best].Label,
		Accuracy:     accuracy,
		Outcome:      OutcomeSuccess,
		Similarities: sims,
		Margin:       margin,
		Reconciled:   reconciled,
	}, nil
}

// Reconcile fits vec to dim: shorter vectors are zero-padded, longer ones
// are subsampled at floor(i*(n-1)/(dim-1)).
func Reconcile(vec []float64, dim int) []float64 {
	out := make([]float64, dim)
	if len(vec) <= dim {
		copy(out, vec)
		return out
	}
	for i, idx := range common.EvenlySpacedIndices(len(vec), dim) {
		out[i] = vec[idx]
	}
	return out
}

// runnerUp is the highest score other than scores[best], or scores[best]
// itself when there is only one
func runnerUp(scores []float64, best int) float64 {
	if len(scores) < 2 {
		return scores[best]
	}
	second := 0.0
	found := false
	for i, s := range scores {
		if i == best {
			continue
		}
		if !found || s > second {
			second, found = s, true
		}
	}
	return second
}

// confidence maps a similarity margin to an accuracy:
// base + (clamp((margin+1)/2, 0, 1) - 0.5) * scale, plus uniform noise,
// clamped to [MinConfidence, MaxConfidence].
func (m *Matcher) confidence(margin float64) float64 {
	normalized := clamp((margin+1)/2, 0, 1)
	base := m.config.BaseConfidence + (normalized-0.5)*m.config.MarginScale

	m.mu.Lock()
	noise := (m.rng.Float64()*2 - 1) * m.config.NoiseAmplitude
	m.mu.Unlock()

	return clamp(base+noise, m.config.MinConfidence, m.config.MaxConfidence)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
