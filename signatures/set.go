// Package signatures holds the reference emotion vectors the matcher scores
// against, and the loaders that find them.
package signatures

import (
	"fmt"
)

// Signature is one labelled reference vector
type Signature struct {
	Label  string    `json:"label"`
	Vector []float32 `json:"vector"`
}

// Set is an ordered, immutable collection of signatures sharing one
// dimensionality. Order is significant: it breaks ties in the matcher.
type Set struct {
	signatures []Signature
	index      map[string]int
	dim        int
}

// NewSet validates sigs and copies them into a Set. Labels must be
// non-empty and unique and every vector must have the same non-zero
// length. An empty input yields an empty Set.
func NewSet(sigs []Signature) (*Set, error) {
	s := &Set{
		signatures: make([]Signature, 0, len(sigs)),
		index:      make(map[string]int, len(sigs)),
	}

	for i, sig := range sigs {
		if sig.Label == "" {
			return nil, fmt.Errorf("signature %d has an empty label", i)
		}
		if _, dup := s.index[sig.Label]; dup {
			return nil, fmt.Errorf("duplicate signature label %q", sig.Label)
		}
		if len(sig.Vector) == 0 {
			return nil, fmt.Errorf("signature %q is empty", sig.Label)
		}
		if i == 0 {
			s.dim = len(sig.Vector)
		} else if len(sig.Vector) != s.dim {
			return nil, fmt.Errorf("signature %q has dimension %d, want %d", sig.Label, len(sig.Vector), s.dim)
		}

		vec := make([]float32, len(sig.Vector))
		copy(vec, sig.Vector)
		s.index[sig.Label] = len(s.signatures)
		s.signatures = append(s.signatures, Signature{Label: sig.Label, Vector: vec})
	}

	return s, nil
}

// Empty returns a Set with no signatures
func Empty() *Set {
	s, _ := NewSet(nil)
	return s
}

// Len returns the number of signatures
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.signatures)
}

// IsEmpty reports whether the set has no signatures
func (s *Set) IsEmpty() bool { return s.Len() == 0 }

// Dim returns the shared vector length, 0 for an empty set
func (s *Set) Dim() int {
	if s == nil {
		return 0
	}
	return s.dim
}

// Labels returns the labels in priority order
func (s *Set) Labels() []string {
	labels := make([]string, s.Len())
	for i := range labels {
		labels[i] = s.signatures[i].Label
	}
	return labels
}

// At returns the i-th signature. The vector must not be modified.
func (s *Set) At(i int) Signature {
	return s.signatures[i]
}

// Get returns the signature for label. The vector must not be modified.
func (s *Set) Get(label string) (Signature, bool) {
	if s == nil {
		return Signature{}, false
	}
	i, ok := s.index[label]
	if !ok {
		return Signature{}, false
	}
	return s.signatures[i], true
}

// All returns copies of every signature in order
func (s *Set) All() []Signature {
	out := make([]Signature, s.Len())
	for i, sig := range s.signatures {
		vec := make([]float32, len(sig.Vector))
		copy(vec, sig.Vector)
		out[i] = Signature{Label: sig.Label, Vector: vec}
	}
	return out
}

func (s *Set) String() string {
	return fmt.Sprintf("Set{%d signatures, dim %d}", s.Len(), s.Dim())
}
