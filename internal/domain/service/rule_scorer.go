package service

import (
	"context"
	"math"

	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/model"
)

// Rule thresholds and weights.
const (
	highAmountThreshold   = 100000
	highVelocityThreshold = 50
	countryRiskThreshold  = 0.5

	highAmountWeight   = 0.4
	highVelocityWeight = 0.2
	countryRiskWeight  = 0.2
	countryRiskCap     = 0.2
	blacklistWeight    = 0.3
)

// Rule reasons.
const (
	ReasonHighAmount   = "High amount"
	ReasonHighVelocity = "High velocity"
	ReasonCountryRisk  = "Elevated country risk"
	ReasonInsiderFlag  = "Insider flag"
	ReasonNoSignals    = "No high-risk signals"
)

var slotIndex = func() map[string]int {
	m := make(map[string]int, len(feature.DefaultOrder))
	for i, name := range feature.DefaultOrder {
		m[name] = i
	}
	return m
}()

// RuleScorer is the additive heuristic used when no trained model is loaded.
type RuleScorer struct{}

// NewRuleScorer creates a new RuleScorer instance.
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Predict scores the hash-encoded record.
func (s *RuleScorer) Predict(_ context.Context, features feature.Set) model.Prediction {
	probability, reasons := s.Evaluate(features)
	return model.NewPrediction(probability, reasons)
}

// Evaluate returns the capped score and the triggered reasons in rule order.
func (s *RuleScorer) Evaluate(features feature.Set) (float64, []string) {
	vector := feature.HashEncode(feature.Canonicalize(features))
	slot := func(name string) float64 { return vector[slotIndex[name]] }

	score := 0.0
	reasons := make([]string, 0, 4)

	if slot("amount") >= highAmountThreshold {
		score += highAmountWeight
		reasons = append(reasons, ReasonHighAmount)
	}

	if slot("transactions_last_1h") >= highVelocityThreshold {
		score += highVelocityWeight
		reasons = append(reasons, ReasonHighVelocity)
	}

	countryRisk := slot("country_risk_score")
	score += math.Min(countryRiskCap, countryRisk*countryRiskWeight)
	if countryRisk >= countryRiskThreshold {
		reasons = append(reasons, ReasonCountryRisk)
	}

	if slot("blacklist_match_flag") == 1 {
		score += blacklistWeight
		reasons = append(reasons, ReasonInsiderFlag)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonNoSignals)
	}

	return math.Min(score, 1.0), reasons
}
