package model

import (
	"math"

	"github.com/bibbank/fraudscore/internal/domain/valueobject"
)

// NoExplanation is the reason attached when nothing better is available.
const NoExplanation = "No explanation available"

// Prediction is the immutable outcome of scoring one record.
type Prediction struct {
	label       valueobject.Label
	reasons     []string
	probability float64
}

// NewPrediction clamps probability into [0, 1], derives the label and
// guarantees at least one reason.
func NewPrediction(probability float64, reasons []string) Prediction {
	switch {
	case math.IsNaN(probability) || probability < 0:
		probability = 0
	case probability > 1:
		probability = 1
	}

	kept := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if r != "" {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, NoExplanation)
	}

	return Prediction{
		probability: probability,
		label:       valueobject.LabelFromProbability(probability),
		reasons:     kept,
	}
}

func (p Prediction) Probability() float64     { return p.probability }
func (p Prediction) Label() valueobject.Label { return p.label }

// Reasons returns a copy of the explanation list.
func (p Prediction) Reasons() []string {
	out := make([]string, len(p.reasons))
	copy(out, p.reasons)
	return out
}
