package valueobject

import (
	"encoding/json"
	"fmt"
)

// Label is the immutable risk classification of a prediction.
type Label struct {
	value string
}

var (
	LabelFraud  = Label{value: "Fraud"}
	LabelReview = Label{value: "Review"}
	LabelNormal = Label{value: "Normal"}
)

// Probability thresholds for the label bands.
const (
	FraudThreshold  = 0.7
	ReviewThreshold = 0.5
)

// AllLabels lists every label from most to least severe.
func AllLabels() []Label {
	return []Label{LabelFraud, LabelReview, LabelNormal}
}

// LabelFromProbability derives the label for a probability.
func LabelFromProbability(p float64) Label {
	switch {
	case p >= FraudThreshold:
		return LabelFraud
	case p >= ReviewThreshold:
		return LabelReview
	default:
		return LabelNormal
	}
}

// LabelFromString reconstructs a Label from its string representation.
func LabelFromString(s string) (Label, error) {
	switch s {
	case "Fraud":
		return LabelFraud, nil
	case "Review":
		return LabelReview, nil
	case "Normal":
		return LabelNormal, nil
	default:
		return Label{}, fmt.Errorf("invalid label: %s", s)
	}
}

// String returns the string representation.
func (l Label) String() string {
	return l.value
}

// IsZero returns true if the Label has not been set.
func (l Label) IsZero() bool {
	return l.value == ""
}

// MarshalJSON encodes the label as its string form.
func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.value)
}

// UnmarshalJSON decodes a label written by MarshalJSON.
func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := LabelFromString(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
