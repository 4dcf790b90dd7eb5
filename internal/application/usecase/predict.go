package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/fraudscore/internal/application/dto"
	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/port"
	"github.com/bibbank/fraudscore/internal/domain/service"
)

// Predict scores a single raw record.
type Predict struct {
	scorer   service.Scorer
	source   string
	enricher port.RecordEnricher
	metrics  port.Metrics
}

// NewPredict creates a Predict use case. enricher and metrics may be nil.
func NewPredict(scorer service.Scorer, source string, enricher port.RecordEnricher, metrics port.Metrics) *Predict {
	return &Predict{scorer: scorer, source: source, enricher: enricher, metrics: metrics}
}

// Source is the tag of the model serving predictions.
func (uc *Predict) Source() string {
	return uc.source
}

// Execute validates the record and scores it. Invalid records yield a
// *feature.ValidationError listing every problem.
func (uc *Predict) Execute(ctx context.Context, raw feature.RawRecord) (dto.PredictionResponse, error) {
	ctx, span := tracer.Start(ctx, "Predict")
	defer span.End()

	p, err := uc.Score(ctx, raw)
	if err != nil {
		return dto.PredictionResponse{}, err
	}

	span.SetAttributes(
		attribute.String("fraudscore.label", p.Label().String()),
		attribute.String("fraudscore.model", uc.source),
	)
	return dto.FromPrediction(p, uc.source), nil
}

// Score returns the domain prediction, for callers that build their own output.
func (uc *Predict) Score(ctx context.Context, raw feature.RawRecord) (model.Prediction, error) {
	if uc.enricher != nil {
		raw = uc.enricher.Enrich(ctx, raw)
	}
	set, problems := feature.Normalize(raw)
	if len(problems) > 0 {
		return model.Prediction{}, &feature.ValidationError{Problems: problems}
	}

	p := uc.scorer.Predict(ctx, set)
	if uc.metrics != nil {
		uc.metrics.RecordPrediction(ctx, p.Label().String(), uc.source)
	}
	return p, nil
}
