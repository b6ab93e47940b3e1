package matcher

import (
	"time"
)

// Outcome classifies how a Result was produced
type Outcome int

const (
	// OutcomeSuccess means the input was scored against the signatures
	OutcomeSuccess Outcome = iota
	// OutcomeNoSignatures means the store was empty
	OutcomeNoSignatures
	// OutcomeInferenceFailure means matching raised an error
	OutcomeInferenceFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoSignatures:
		return "no_signatures"
	case OutcomeInferenceFailure:
		return "inference_failure"
	default:
		return "unknown"
	}
}

// Similarity is the cosine similarity of the input to one label
type Similarity struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Result is the classification. Only State and Accuracy are serialized;
// the rest is diagnostic.
type Result struct {
	State    string  `json:"state"`
	Accuracy float64 `json:"accuracy"`

	Outcome      Outcome       `json:"-"`
	Similarities []Similarity  `json:"-"` // in signature order
	Margin       float64       `json:"-"` // best minus runner-up similarity
	Reconciled   bool          `json:"-"` // input length differed from the signature dimension
	Elapsed      time.Duration `json:"-"`
	Err          error         `json:"-"`
}
