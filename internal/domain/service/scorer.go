package service

import (
	"context"

	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/model"
)

// Source tags reported alongside every prediction.
const (
	SourceTrainedModel = "joblib-model"
	SourceRules        = "placeholder"
)

// Scorer defines the interface for scoring strategies.
// Both RuleScorer and ModelScorer implement this. Predict never fails and is
// safe for concurrent use.
type Scorer interface {
	Predict(ctx context.Context, features feature.Set) model.Prediction
}
