// Package config loads the YAML configuration shared by every component.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/RyanBlaney/sonido-emotion/features"
	"github.com/RyanBlaney/sonido-emotion/logging"
	"github.com/RyanBlaney/sonido-emotion/matcher"
	"github.com/RyanBlaney/sonido-emotion/signatures"
	"github.com/RyanBlaney/sonido-emotion/transcode"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPath names a config file to load instead of the search paths
	EnvPath = "SONIDO_EMOTION_CONFIG"
	// EnvName selects the config/<env>/config.yaml directory
	EnvName = "SONIDO_EMOTION_ENV"
)

// Config aggregates the per-component configuration
type Config struct {
	LogLevel   string                     `yaml:"log_level"`
	Normalizer transcode.NormalizerConfig `yaml:"normalizer"`
	Features   features.Config            `yaml:"features"`
	Signatures signatures.Config          `yaml:"signatures"`
	Matcher    matcher.Config             `yaml:"matcher"`
}

// Default returns every component's defaults
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		Normalizer: *transcode.DefaultNormalizerConfig(),
		Features:   *features.DefaultConfig(),
		Signatures: *signatures.DefaultConfig(),
		Matcher:    *matcher.DefaultConfig(),
	}
}

// Validate checks each component's section
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Normalizer.Validate(); err != nil {
		return fmt.Errorf("normalizer: %w", err)
	}
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	if err := c.Signatures.Validate(); err != nil {
		return fmt.Errorf("signatures: %w", err)
	}
	if err := c.Matcher.Validate(); err != nil {
		return fmt.Errorf("matcher: %w", err)
	}
	return nil
}

// Decode reads YAML from r over the defaults and validates the result.
// Keys absent from the document keep their default values.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Normalizer.Decoder == nil {
		cfg.Normalizer.Decoder = transcode.DefaultDecoderConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFile decodes the file at path
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Load resolves the configuration. An explicit path must exist. Otherwise
// $SONIDO_EMOTION_CONFIG is used if set, then config/<env>/config.yaml and
// sonido-emotion.yaml are tried in turn. With no file found the defaults
// are returned.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	if p := os.Getenv(EnvPath); p != "" {
		return LoadFile(p)
	}

	env := os.Getenv(EnvName)
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
		"sonido-emotion.yaml",
	}
	for _, p := range guess {
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return Default(), nil
}
