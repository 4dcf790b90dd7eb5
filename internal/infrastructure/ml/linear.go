package ml

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// linear holds the weights shared by the linear model kinds.
type linear struct {
	coef      [][]float64
	intercept []float64
}

func (m linear) margin(row []float64) (float64, error) {
	w := m.coef[0]
	if len(row) != len(w) {
		return 0, fmt.Errorf("vector has %d features, model expects %d", len(row), len(w))
	}
	z := floats.Dot(w, row)
	if len(m.intercept) > 0 {
		z += m.intercept[0]
	}
	return z, nil
}

func (m linear) margins(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		z, err := m.margin(row)
		if err != nil {
			return nil, err
		}
		out[i] = z
	}
	return out, nil
}

func (m linear) Coefficients() [][]float64 {
	return m.coef
}

// DecisionFunction returns the signed distance to the separating hyperplane.
func (m linear) DecisionFunction(_ context.Context, rows [][]float64) ([]float64, error) {
	return m.margins(rows)
}

// LogisticRegression is a binary logistic model. With training means it can
// attribute a prediction to individual features.
type LogisticRegression struct {
	linear
	means []float64
}

func (m *LogisticRegression) Predict(ctx context.Context, rows [][]float64) ([]any, error) {
	proba, err := m.PredictProba(ctx, rows)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(proba))
	for i, p := range proba {
		out[i] = boolToInt(p[1] >= 0.5)
	}
	return out, nil
}

func (m *LogisticRegression) PredictProba(_ context.Context, rows [][]float64) ([][]float64, error) {
	zs, err := m.margins(rows)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(zs))
	for i, z := range zs {
		p := sigmoid(z)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

// Attribute returns coef_i * (x_i - mean_i), the exact per-feature log-odds
// contribution relative to the mean record.
func (m *LogisticRegression) Attribute(_ context.Context, row []float64) ([]float64, error) {
	w := m.coef[0]
	if len(row) != len(w) {
		return nil, fmt.Errorf("vector has %d features, model expects %d", len(row), len(w))
	}
	means := make([]float64, len(row))
	copy(means, m.means)

	out := floats.SubTo(make([]float64, len(row)), row, means)
	floats.Mul(out, w)
	return out, nil
}

// LinearSVM is a linear max-margin classifier without probability output.
type LinearSVM struct {
	linear
}

func (m *LinearSVM) Predict(_ context.Context, rows [][]float64) ([]any, error) {
	zs, err := m.margins(rows)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(zs))
	for i, z := range zs {
		out[i] = boolToInt(z > 0)
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
