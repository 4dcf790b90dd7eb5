package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/port"
)

var errEmptyOutput = errors.New("classifier returned no output")

var fraudTokens = map[string]struct{}{"fraud": {}, "1": {}, "true": {}}

// ModelScorer wraps a trained classifier and its encoder metadata.
// If inference fails, it falls back to the RuleScorer.
type ModelScorer struct {
	classifier port.Classifier
	meta       feature.Metadata
	caps       Capability
	explainer  *Explainer
	rules      *RuleScorer
	logger     *slog.Logger
}

// NewModelScorer resolves the classifier's capabilities once and builds the
// matching explainer.
func NewModelScorer(c port.Classifier, meta feature.Metadata, logger *slog.Logger) *ModelScorer {
	rules := NewRuleScorer()
	caps := ResolveCapabilities(c)
	explainer := NewExplainer(c, caps, rules, logger)
	explainer.showEncoded = meta.HasOneHot()
	return &ModelScorer{
		classifier: c,
		meta:       meta,
		caps:       caps,
		explainer:  explainer,
		rules:      rules,
		logger:     logger,
	}
}

// Capabilities returns what the wrapped classifier supports.
func (s *ModelScorer) Capabilities() Capability {
	return s.caps
}

// Predict encodes the record, asks the classifier for a probability and
// explains the result.
func (s *ModelScorer) Predict(ctx context.Context, features feature.Set) model.Prediction {
	canonical := feature.Canonicalize(features)
	vector, labels := s.encode(canonical)

	probability, err := s.probability(ctx, vector)
	if err != nil {
		s.logger.Warn("model inference failed, using rule scoring", "error", err)
		return s.rules.Predict(ctx, features)
	}

	return model.NewPrediction(probability, s.explainer.Explain(ctx, canonical, vector, labels))
}

// encode uses the metadata layout when it declares one-hot encoders and the
// default hash layout otherwise.
func (s *ModelScorer) encode(canonical feature.Set) ([]float64, []string) {
	if s.meta.HasOneHot() {
		return feature.MetadataEncode(canonical, s.meta)
	}
	return feature.HashEncode(canonical), feature.DefaultOrder
}

func (s *ModelScorer) probability(ctx context.Context, vector []float64) (float64, error) {
	rows := [][]float64{vector}

	switch {
	case s.caps.Has(HasProbabilityOutput):
		proba, err := s.classifier.(port.ProbabilityEstimator).PredictProba(ctx, rows)
		if err != nil {
			return 0, fmt.Errorf("predict_proba: %w", err)
		}
		if len(proba) == 0 || len(proba[0]) == 0 {
			return 0, errEmptyOutput
		}
		return proba[0][len(proba[0])-1], nil

	case s.caps.Has(HasDecisionScore):
		scores, err := s.classifier.(port.DecisionScorer).DecisionFunction(ctx, rows)
		if err != nil {
			return 0, fmt.Errorf("decision function: %w", err)
		}
		if len(scores) == 0 {
			return 0, errEmptyOutput
		}
		return logistic(scores[0]), nil

	default:
		out, err := s.classifier.Predict(ctx, rows)
		if err != nil {
			return 0, fmt.Errorf("predict: %w", err)
		}
		if len(out) == 0 {
			return 0, errEmptyOutput
		}
		return coerceOutput(out[0]), nil
	}
}

func logistic(score float64) float64 {
	return 1 / (1 + math.Exp(-score))
}

// coerceOutput reads a raw label as a number, or as a fraud token when it is
// not numeric.
func coerceOutput(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	}

	text := strings.TrimSpace(fmt.Sprint(v))
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	if _, ok := fraudTokens[strings.ToLower(text)]; ok {
		return 1
	}
	return 0
}
