package port

import "context"

// Classifier is a trained model that can at least label a batch of vectors.
// Outputs may be numbers, booleans or strings such as "fraud".
//
// Richer models also implement any of ProbabilityEstimator, DecisionScorer,
// ImportanceProvider, CoefficientProvider and Attributor. Implementations
// must be safe for concurrent read-only use.
type Classifier interface {
	Predict(ctx context.Context, rows [][]float64) ([]any, error)
}

// ProbabilityEstimator returns per-class probabilities; the last column is
// the positive (fraud) class.
type ProbabilityEstimator interface {
	PredictProba(ctx context.Context, rows [][]float64) ([][]float64, error)
}

// DecisionScorer returns an unbounded margin per row.
type DecisionScorer interface {
	DecisionFunction(ctx context.Context, rows [][]float64) ([]float64, error)
}

// ImportanceProvider exposes global feature importances aligned with the vector.
type ImportanceProvider interface {
	FeatureImportances() []float64
}

// CoefficientProvider exposes linear coefficients; row 0 is the fraud class.
type CoefficientProvider interface {
	Coefficients() [][]float64
}

// Attributor computes per-feature contributions for a single vector.
type Attributor interface {
	Attribute(ctx context.Context, row []float64) ([]float64, error)
}
