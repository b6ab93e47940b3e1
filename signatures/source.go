package signatures

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrEmptySource marks a source that loaded but held no signatures
var ErrEmptySource = errors.New("source contains no signatures")

// LoadError reports a source that could not produce a signature set. The
// store logs it and moves on to the next source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load signatures from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Source produces a signature set
type Source interface {
	Load() (*Set, error)
	Name() string
}

// JSONFileSource loads a label -> vector JSON document from Path
type JSONFileSource struct {
	Path string
}

func (s *JSONFileSource) Name() string { return "json:" + s.Path }

func (s *JSONFileSource) Load() (*Set, error) {
	return loadFile(s.Name(), s.Path, DecodeJSON)
}

// CheckpointSource loads the signatures entry of a msgpack checkpoint
type CheckpointSource struct {
	Path string
}

func (s *CheckpointSource) Name() string { return "checkpoint:" + s.Path }

func (s *CheckpointSource) Load() (*Set, error) {
	return loadFile(s.Name(), s.Path, DecodeCheckpoint)
}

// SyntheticSource generates the deterministic fallback set
type SyntheticSource struct {
	Params SyntheticParams
}

func (s *SyntheticSource) Name() string { return "synthetic" }

func (s *SyntheticSource) Load() (*Set, error) {
	set, err := Synthetic(s.Params)
	if err != nil {
		return nil, &LoadError{Source: s.Name(), Err: err}
	}
	return set, nil
}

// StaticSource serves a prebuilt set, mostly for tests and embedding
type StaticSource struct {
	Set *Set
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Load() (*Set, error) {
	if s.Set == nil {
		return nil, &LoadError{Source: s.Name(), Err: ErrEmptySource}
	}
	return s.Set, nil
}

func loadFile(name, path string, decode func(io.Reader) (*Set, error)) (*Set, error) {
	if path == "" {
		return nil, &LoadError{Source: name, Err: errors.New("no path configured")}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	defer f.Close()

	set, err := decode(f)
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	if set.IsEmpty() {
		return nil, &LoadError{Source: name, Err: ErrEmptySource}
	}
	return set, nil
}
