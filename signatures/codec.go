package signatures

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// checkpointKey is the checkpoint field holding the label -> vector map
const checkpointKey = "signatures"

// DecodeJSON reads a JSON object mapping label to an array of numbers.
// Key order in the document becomes the set order.
func DecodeJSON(r io.Reader) (*Set, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var sigs []Signature
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading label: %w", err)
		}
		label, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var vec []float32
		if err := dec.Decode(&vec); err != nil {
			return nil, fmt.Errorf("reading vector for %q: %w", label, err)
		}
		sigs = append(sigs, Signature{Label: label, Vector: vec})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}

	return NewSet(sigs)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading signature file: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// WriteJSON writes set as a JSON object in set order, the same format
// DecodeJSON reads
func WriteJSON(w io.Writer, set *Set) error {
	if _, err := io.WriteString(w, "{"); err != nil {
		return err
	}
	for i := range set.Len() {
		sig := set.At(i)
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		label, err := json.Marshal(sig.Label)
		if err != nil {
			return err
		}
		vec, err := json.Marshal(sig.Vector)
		if err != nil {
			return fmt.Errorf("encoding %q: %w", sig.Label, err)
		}
		if _, err := fmt.Fprintf(w, "%s:%s", label, vec); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

// DecodeCheckpoint reads a msgpack checkpoint: a map whose "signatures"
// entry maps label to an array of numbers. Other top-level entries are
// skipped. Map order in the stream becomes the set order.
func DecodeCheckpoint(r io.Reader) (*Set, error) {
	dec := msgpack.NewDecoder(r)

	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, fmt.Errorf("checkpoint is not a map: %w", err)
	}

	for range max(n, 0) {
		key, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("reading checkpoint key: %w", err)
		}
		if key != checkpointKey {
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("skipping %q: %w", key, err)
			}
			continue
		}
		return decodeCheckpointSignatures(dec)
	}

	return nil, errors.New("checkpoint has no signatures entry")
}

func decodeCheckpointSignatures(dec *msgpack.Decoder) (*Set, error) {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return nil, fmt.Errorf("signatures entry is not a map: %w", err)
	}

	sigs := make([]Signature, 0, max(n, 0))
	for range max(n, 0) {
		label, err := dec.DecodeString()
		if err != nil {
			return nil, fmt.Errorf("reading label: %w", err)
		}

		// float64 accepts float32, float64 and integer encodings
		var raw []float64
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("reading vector for %q: %w", label, err)
		}
		vec := make([]float32, len(raw))
		for i, v := range raw {
			vec[i] = float32(v)
		}
		sigs = append(sigs, Signature{Label: label, Vector: vec})
	}

	return NewSet(sigs)
}

// WriteCheckpoint writes set as a msgpack checkpoint. meta entries are
// written ahead of the signatures entry.
func WriteCheckpoint(w io.Writer, set *Set, meta map[string]any) error {
	enc := msgpack.NewEncoder(w)

	if err := enc.EncodeMapLen(len(meta) + 1); err != nil {
		return err
	}
	for k, v := range meta {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding %q: %w", k, err)
		}
	}

	if err := enc.EncodeString(checkpointKey); err != nil {
		return err
	}
	if err := enc.EncodeMapLen(set.Len()); err != nil {
		return err
	}
	for i := range set.Len() {
		sig := set.At(i)
		if err := enc.EncodeString(sig.Label); err != nil {
			return err
		}
		if err := enc.Encode(sig.Vector); err != nil {
			return fmt.Errorf("encoding %q: %w", sig.Label, err)
		}
	}
	return nil
}
