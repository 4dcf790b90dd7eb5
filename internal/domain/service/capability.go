package service

import (
	"strings"

	"github.com/bibbank/fraudscore/internal/domain/port"
)

// Capability is the set of optional introspection methods a classifier offers.
type Capability uint8

const (
	HasProbabilityOutput Capability = 1 << iota
	HasDecisionScore
	HasFeatureImportance
	HasCoefficients
	HasAttribution
)

// OpaqueOnly marks a classifier that can only Predict.
const OpaqueOnly Capability = 0

// ResolveCapabilities inspects a classifier once.
func ResolveCapabilities(c port.Classifier) Capability {
	var caps Capability
	if _, ok := c.(port.ProbabilityEstimator); ok {
		caps |= HasProbabilityOutput
	}
	if _, ok := c.(port.DecisionScorer); ok {
		caps |= HasDecisionScore
	}
	if p, ok := c.(port.ImportanceProvider); ok && len(p.FeatureImportances()) > 0 {
		caps |= HasFeatureImportance
	}
	if p, ok := c.(port.CoefficientProvider); ok && len(p.Coefficients()) > 0 && len(p.Coefficients()[0]) > 0 {
		caps |= HasCoefficients
	}
	if _, ok := c.(port.Attributor); ok {
		caps |= HasAttribution
	}
	return caps
}

// Has reports whether all flags in want are set.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

func (c Capability) String() string {
	if c == OpaqueOnly {
		return "opaque"
	}
	names := []struct {
		flag Capability
		name string
	}{
		{HasProbabilityOutput, "probability"},
		{HasDecisionScore, "decision"},
		{HasFeatureImportance, "importance"},
		{HasCoefficients, "coefficients"},
		{HasAttribution, "attribution"},
	}
	var parts []string
	for _, n := range names {
		if c.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
