package port

import (
	"context"

	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/model"
)

// RecordEnricher adds derived fields to a raw record before normalization.
// It never fails; on any problem it returns the record unchanged.
type RecordEnricher interface {
	Enrich(ctx context.Context, raw feature.RawRecord) feature.RawRecord
}

// Metrics records scoring outcomes.
type Metrics interface {
	RecordPrediction(ctx context.Context, label, source string)
	RecordBatch(ctx context.Context, kind string, summary model.BatchSummary)
}
