package signatures

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RyanBlaney/sonido-emotion/logging"
)

// Config selects the sources a Store tries, in order
type Config struct {
	// Path of the JSON signature file, skipped when empty
	Path string `json:"path" yaml:"path"`
	// CheckpointPath of the msgpack checkpoint, skipped when empty
	CheckpointPath string `json:"checkpoint_path" yaml:"checkpoint_path"`
	// EnableSynthetic appends the deterministic fallback generator
	EnableSynthetic bool            `json:"enable_synthetic" yaml:"enable_synthetic"`
	Synthetic       SyntheticParams `json:"synthetic" yaml:"synthetic"`
}

// DefaultConfig tries fallback_signatures.json, then
// emotion_checkpoint.msgpack, then the synthetic set
func DefaultConfig() *Config {
	return &Config{
		Path:            "fallback_signatures.json",
		CheckpointPath:  "emotion_checkpoint.msgpack",
		EnableSynthetic: true,
		Synthetic:       DefaultSyntheticParams(),
	}
}

// Sources returns the configured loader chain
func (c *Config) Sources() []Source {
	var sources []Source
	if c.Path != "" {
		sources = append(sources, &JSONFileSource{Path: c.Path})
	}
	if c.CheckpointPath != "" {
		sources = append(sources, &CheckpointSource{Path: c.CheckpointPath})
	}
	if c.EnableSynthetic {
		sources = append(sources, &SyntheticSource{Params: c.Synthetic})
	}
	return sources
}

// Validate checks the synthetic params when the generator is enabled
func (c *Config) Validate() error {
	if c.EnableSynthetic {
		if err := c.Synthetic.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Store resolves a signature set once, on first use, by trying its sources
// in order. Every caller, including concurrent first callers, sees the same
// *Set. After resolution reads take no lock.
type Store struct {
	sources []Source
	logger  logging.Logger

	once   sync.Once
	set    *Set
	source string
}

// NewStore creates a store over sources. Nothing is loaded until Load.
func NewStore(sources ...Source) *Store {
	return &Store{
		sources: sources,
		logger: logging.WithFields(logging.Fields{
			"component": "signature_store",
		}),
	}
}

// NewStoreFromConfig creates a store over config.Sources()
func NewStoreFromConfig(config *Config) *Store {
	if config == nil {
		config = DefaultConfig()
	}
	return NewStore(config.Sources()...)
}

// Load returns the resolved set. The first source that succeeds wins;
// failures are logged and skipped. If every source fails the result is
// an empty set, never nil.
func (s *Store) Load() *Set {
	s.once.Do(s.resolve)
	return s.set
}

// Source names the source that produced the set, "" when none did
func (s *Store) Source() string {
	s.once.Do(s.resolve)
	return s.source
}

func (s *Store) resolve() {
	logger := s.logger.WithFields(logging.Fields{
		"function": "resolve",
	})

	s.set = Empty()
	for _, src := range s.sources {
		set, err := loadSource(src)
		if err == nil && set.IsEmpty() {
			err = &LoadError{Source: src.Name(), Err: ErrEmptySource}
		}
		if err != nil {
			var le *LoadError
			if !errors.As(err, &le) {
				err = &LoadError{Source: src.Name(), Err: err}
			}
			logger.Warn("Signature source failed, trying next", logging.Fields{
				"source": src.Name(),
				"error":  err.Error(),
			})
			continue
		}

		s.set = set
		s.source = src.Name()
		logger.Info("Signatures loaded", logging.Fields{
			"source": src.Name(),
			"labels": set.Labels(),
			"dim":    set.Dim(),
		})
		return
	}

	logger.Warn("No signature source succeeded", logging.Fields{
		"sources": len(s.sources),
	})
}

// loadSource turns a panicking source into a failed one so resolve always
// finishes with a usable set
func loadSource(src Source) (set *Set, err error) {
	defer func() {
		if r := recover(); r != nil {
			set, err = nil, fmt.Errorf("panic loading signatures: %v", r)
		}
	}()
	return src.Load()
}
