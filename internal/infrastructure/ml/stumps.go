package ml

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stump is one depth-1 tree of a boosted ensemble.
type Stump struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
	Gain      float64 `json:"gain"`
}

// StumpEnsemble is a gradient-boosted ensemble of decision stumps over the
// log-odds. Rows go left when x[feature] <= threshold.
type StumpEnsemble struct {
	stumps       []Stump
	baseScore    float64
	learningRate float64
	width        int
	importances  []float64
}

func newStumpEnsemble(stumps []Stump, baseScore, learningRate float64, width int) (*StumpEnsemble, error) {
	if learningRate == 0 {
		learningRate = 1
	}
	for i, s := range stumps {
		if s.Feature < 0 || s.Feature >= width {
			return nil, fmt.Errorf("stump %d splits on feature %d outside [0,%d)", i, s.Feature, width)
		}
	}
	return &StumpEnsemble{
		stumps:       stumps,
		baseScore:    baseScore,
		learningRate: learningRate,
		width:        width,
		importances:  splitImportances(stumps, width),
	}, nil
}

// splitImportances sums the gain per feature and normalizes to 1. Stumps
// without recorded gain count as one split each.
func splitImportances(stumps []Stump, width int) []float64 {
	out := make([]float64, width)
	for _, s := range stumps {
		g := math.Abs(s.Gain)
		if g == 0 {
			g = 1
		}
		out[s.Feature] += g
	}
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}

func (m *StumpEnsemble) score(row []float64) (float64, error) {
	if len(row) != m.width {
		return 0, fmt.Errorf("vector has %d features, model expects %d", len(row), m.width)
	}
	z := m.baseScore
	for _, s := range m.stumps {
		if row[s.Feature] <= s.Threshold {
			z += m.learningRate * s.Left
		} else {
			z += m.learningRate * s.Right
		}
	}
	return z, nil
}

func (m *StumpEnsemble) Predict(ctx context.Context, rows [][]float64) ([]any, error) {
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

func (m *StumpEnsemble) PredictProba(_ context.Context, rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		z, err := m.score(row)
		if err != nil {
			return nil, err
		}
		p := sigmoid(z)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

func (m *StumpEnsemble) FeatureImportances() []float64 {
	return m.importances
}
