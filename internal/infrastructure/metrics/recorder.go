// Package metrics counts scoring outcomes on an OpenTelemetry meter.
package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/fraudscore/internal/domain/model"
)

// Recorder implements port.Metrics.
type Recorder struct {
	predictions metric.Int64Counter
	batchRows   metric.Int64Counter
	batches     metric.Int64Counter
}

// NewRecorder registers the scoring instruments on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	predictions, err := meter.Int64Counter("fraudscore.predictions",
		metric.WithDescription("Scored records by label and model source."),
		metric.WithUnit("{prediction}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create predictions counter: %w", err)
	}
	batchRows, err := meter.Int64Counter("fraudscore.batch.rows",
		metric.WithDescription("Examined upload rows by file kind and outcome."),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batch rows counter: %w", err)
	}
	batches, err := meter.Int64Counter("fraudscore.batches",
		metric.WithDescription("Scored uploads by file kind."),
		metric.WithUnit("{upload}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create batches counter: %w", err)
	}
	return &Recorder{predictions: predictions, batchRows: batchRows, batches: batches}, nil
}

func (r *Recorder) RecordPrediction(ctx context.Context, label, source string) {
	r.predictions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("label", label),
		attribute.String("source", source),
	))
}

func (r *Recorder) RecordBatch(ctx context.Context, kind string, summary model.BatchSummary) {
	r.batches.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))

	rows := []struct {
		outcome string
		n       int
	}{
		{"fraud", summary.LabelCounts.Fraud},
		{"review", summary.LabelCounts.Review},
		{"normal", summary.LabelCounts.Normal},
		{"rejected", summary.Errors},
	}
	for _, row := range rows {
		if row.n == 0 {
			continue
		}
		r.batchRows.Add(ctx, int64(row.n), metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("outcome", row.outcome),
		))
	}
}
