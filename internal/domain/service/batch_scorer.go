package service

import (
	"context"

	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/model"
	"github.com/bibbank/fraudscore/internal/domain/port"
)

// BatchScorer runs the scoring pipeline over the rows of one upload,
// sequentially and up to model.MaxBatchRows.
type BatchScorer struct {
	scorer   Scorer
	enricher port.RecordEnricher
}

// NewBatchScorer creates a BatchScorer. enricher may be nil.
func NewBatchScorer(scorer Scorer, enricher port.RecordEnricher) *BatchScorer {
	return &BatchScorer{scorer: scorer, enricher: enricher}
}

// Score validates and scores each row. Rejected rows are counted and kept
// with their problems; they never stop the batch. onRow, when set, is called
// after every examined row.
func (b *BatchScorer) Score(ctx context.Context, fields []string, rows []feature.RawRecord, onRow func(model.RowResult)) *model.BatchResult {
	result := model.NewBatchResult(fields)

	for i, raw := range rows {
		if result.Full() {
			break
		}
		row := i + 1

		if b.enricher != nil {
			raw = b.enricher.Enrich(ctx, raw)
		}

		set, problems := feature.Normalize(raw)
		if len(problems) > 0 {
			result.AddRejected(row, problems)
		} else {
			result.AddScored(row, b.scorer.Predict(ctx, set))
		}

		if onRow != nil {
			onRow(result.Results[len(result.Results)-1])
		}
	}

	return result
}
