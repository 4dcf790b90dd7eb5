package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/port"
)

// MaxReasons is the most reasons a ranked explanation returns.
const MaxReasons = 3

// Explainer ranks feature contributions into human-readable reasons.
type Explainer struct {
	attributor port.Attributor
	weights    []float64
	rules      *RuleScorer
	logger     *slog.Logger

	// showEncoded prints vector values instead of record values. Set for
	// metadata-encoded vectors, whose slots are not record fields.
	showEncoded bool
}

// NewExplainer picks the explanation paths the classifier supports. Global
// importances win over coefficients when a model offers both.
func NewExplainer(c port.Classifier, caps Capability, rules *RuleScorer, logger *slog.Logger) *Explainer {
	e := &Explainer{rules: rules, logger: logger}

	if caps.Has(HasAttribution) {
		e.attributor = c.(port.Attributor)
	}
	switch {
	case caps.Has(HasFeatureImportance):
		e.weights = c.(port.ImportanceProvider).FeatureImportances()
	case caps.Has(HasCoefficients):
		e.weights = c.(port.CoefficientProvider).Coefficients()[0]
	}
	return e
}

// Explain returns at most MaxReasons reasons, never an empty list. An
// attribution that fails or comes back empty falls through to the global
// weights, then to the rules.
func (e *Explainer) Explain(ctx context.Context, features feature.Set, vector []float64, labels []string) []string {
	if e.attributor != nil {
		contributions, err := e.attributor.Attribute(ctx, vector)
		switch {
		case err != nil:
			e.logger.Debug("attribution failed, falling back", "error", err)
		case len(contributions) > 0:
			return orNoExplanation(e.rank(features, vector, labels, contributions, "impact %.3f"))
		}
	}

	if len(e.weights) > 0 {
		return orNoExplanation(e.rank(features, vector, labels, e.weights, "weight %.2f"))
	}

	_, reasons := e.rules.Evaluate(features)
	if len(reasons) > MaxReasons {
		reasons = reasons[:MaxReasons]
	}
	return orNoExplanation(reasons)
}

func orNoExplanation(reasons []string) []string {
	if len(reasons) == 0 {
		return []string{model.NoExplanation}
	}
	return reasons
}

// rank orders slots by absolute weight, keeping slot order on ties.
func (e *Explainer) rank(features feature.Set, vector []float64, labels []string, weights []float64, format string) []string {
	n := min(len(labels), len(vector), len(weights))

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(weights[idx[a]]) > math.Abs(weights[idx[b]])
	})

	if len(idx) > MaxReasons {
		idx = idx[:MaxReasons]
	}
	reasons := make([]string, 0, len(idx))
	for _, i := range idx {
		reasons = append(reasons, fmt.Sprintf("%s: %s ("+format+")", labels[i], e.displayValue(features, labels[i], vector[i]), weights[i]))
	}
	return reasons
}

// displayValue shows the encoded number for metadata vectors. For hash
// vectors it shows the record's own value, and 0 for a field the record lacks.
func (e *Explainer) displayValue(features feature.Set, label string, encoded float64) string {
	if e.showEncoded {
		return feature.FormatNumber(encoded)
	}
	if text, ok := features.Text(label); ok {
		return text
	}
	return "0"
}
