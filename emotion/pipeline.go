// Package emotion wires the normalizer, feature extractor and matcher into
// a single classify call.
package emotion

import (
	"context"
	"fmt"
	"time"

	"github.com/RyanBlaney/sonido-emotion/config"
	"github.com/RyanBlaney/sonido-emotion/features"
	"github.com/RyanBlaney/sonido-emotion/logging"
	"github.com/RyanBlaney/sonido-emotion/matcher"
	"github.com/RyanBlaney/sonido-emotion/signatures"
	"github.com/RyanBlaney/sonido-emotion/transcode"
	"github.com/google/uuid"
)

// Request is one clip to classify
type Request struct {
	Audio []byte
	// Message is a free-text annotation from the caller. It is logged
	// alongside the result and otherwise ignored.
	Message string
}

// Pipeline classifies raw audio. It is safe for concurrent use.
type Pipeline struct {
	normalizer *transcode.Normalizer
	extractor  features.Extractor
	matcher    *matcher.Matcher
	store      *signatures.Store
	logger     logging.Logger
}

// NewPipeline assembles a pipeline from prebuilt components
func NewPipeline(normalizer *transcode.Normalizer, extractor features.Extractor, m *matcher.Matcher) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		extractor:  extractor,
		matcher:    m,
		logger: logging.WithFields(logging.Fields{
			"component": "emotion_pipeline",
		}),
	}
}

// NewPipelineFromConfig builds every component from cfg. The signature
// store is created here and loaded lazily on the first classification.
func NewPipelineFromConfig(cfg *config.Config, opts ...matcher.Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	normalizer, err := transcode.NewNormalizer(&cfg.Normalizer)
	if err != nil {
		return nil, err
	}
	extractor, err := features.NewExtractor(&cfg.Features)
	if err != nil {
		return nil, err
	}

	store := signatures.NewStoreFromConfig(&cfg.Signatures)
	m, err := matcher.New(store, append([]matcher.Option{matcher.WithConfig(&cfg.Matcher)}, opts...)...)
	if err != nil {
		return nil, err
	}

	p := NewPipeline(normalizer, extractor, m)
	p.store = store
	return p, nil
}

// Store returns the signature store built by NewPipelineFromConfig, nil
// for pipelines assembled with NewPipeline
func (p *Pipeline) Store() *signatures.Store {
	return p.store
}

// Features normalizes raw audio and extracts the model input
func (p *Pipeline) Features(raw []byte) (*features.ModelInput, error) {
	w, err := p.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	m, err := p.extractor.Extract(w)
	if err != nil {
		return nil, fmt.Errorf("feature extraction failed: %w", err)
	}
	return features.NewModelInput(m), nil
}

// Classify runs the full pipeline. Undecodable audio is returned as a
// *transcode.DecodeError; every other failure is folded into the Result by
// the matcher.
func (p *Pipeline) Classify(ctx context.Context, req Request) (matcher.Result, error) {
	requestID := uuid.NewString()
	ctx = logging.ContextWithFields(ctx, logging.Fields{"request_id": requestID})
	logger := p.logger.WithContext(ctx).WithFields(logging.Fields{
		"function":  "Classify",
		"data_size": len(req.Audio),
	})

	start := time.Now()
	in, err := p.Features(req.Audio)
	if err != nil {
		logger.Warn("Rejected audio", logging.Fields{"error": err.Error()})
		return matcher.Result{}, err
	}
	preprocess := time.Since(start)

	res := p.matcher.Classify(in)

	logger.Info("Classified audio", logging.Fields{
		"state":          res.State,
		"accuracy":       res.Accuracy,
		"outcome":        res.Outcome.String(),
		"message":        req.Message,
		"preprocess_ms":  preprocess.Milliseconds(),
		"inference_time": res.Elapsed.Seconds(),
	})
	return res, nil
}
