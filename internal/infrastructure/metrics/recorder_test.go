package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/bibbank/fraudscore/internal/domain/model"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Sum[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func valueFor(sum metricdata.Sum[int64], attrs ...attribute.KeyValue) int64 {
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestRecorder(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	rec, err := NewRecorder(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	rec.RecordPrediction(ctx, "Fraud", "placeholder")
	rec.RecordPrediction(ctx, "Fraud", "placeholder")
	rec.RecordPrediction(ctx, "Normal", "joblib-model")
	rec.RecordBatch(ctx, "csv", model.BatchSummary{
		Total: 4, Scored: 3, Errors: 1,
		LabelCounts: model.LabelCounts{Fraud: 1, Normal: 2},
	})

	sums := collect(t, reader)

	predictions := sums["fraudscore.predictions"]
	assert.Equal(t, int64(2), valueFor(predictions, attribute.String("label", "Fraud"), attribute.String("source", "placeholder")))
	assert.Equal(t, int64(1), valueFor(predictions, attribute.String("label", "Normal"), attribute.String("source", "joblib-model")))

	rows := sums["fraudscore.batch.rows"]
	assert.Equal(t, int64(2), valueFor(rows, attribute.String("kind", "csv"), attribute.String("outcome", "normal")))
	assert.Equal(t, int64(1), valueFor(rows, attribute.String("kind", "csv"), attribute.String("outcome", "rejected")))
	assert.Len(t, rows.DataPoints, 3, "zero outcomes are not recorded")

	assert.Equal(t, int64(1), valueFor(sums["fraudscore.batches"], attribute.String("kind", "csv")))
}
