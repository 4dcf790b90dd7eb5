package service_test

import (
	"context"
	"io"
	"log/slog"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type opaqueClassifier struct {
	out any
	err error
}

func (c opaqueClassifier) Predict(_ context.Context, rows [][]float64) ([]any, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]any, len(rows))
	for i := range out {
		out[i] = c.out
	}
	return out, nil
}

type probaClassifier struct {
	opaqueClassifier
	positive float64
	probaErr error
}

func (c probaClassifier) PredictProba(_ context.Context, rows [][]float64) ([][]float64, error) {
	if c.probaErr != nil {
		return nil, c.probaErr
	}
	out := make([][]float64, len(rows))
	for i := range out {
		out[i] = []float64{1 - c.positive, c.positive}
	}
	return out, nil
}

type decisionClassifier struct {
	opaqueClassifier
	score float64
}

func (c decisionClassifier) DecisionFunction(_ context.Context, rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i := range out {
		out[i] = c.score
	}
	return out, nil
}

type linearClassifier struct {
	decisionClassifier
	coef []float64
}

func (c linearClassifier) Coefficients() [][]float64 {
	return [][]float64{c.coef}
}

type forestClassifier struct {
	probaClassifier
	importances []float64
}

func (c forestClassifier) FeatureImportances() []float64 {
	return c.importances
}

type attributingClassifier struct {
	forestClassifier
	contributions []float64
	attrErr       error
}

func (c attributingClassifier) Attribute(_ context.Context, _ []float64) ([]float64, error) {
	return c.contributions, c.attrErr
}

type boostedLinearClassifier struct {
	linearClassifier
	importances []float64
}

func (c boostedLinearClassifier) FeatureImportances() []float64 {
	return c.importances
}
