// Package stream scores raw records consumed from Kafka and publishes the
// outcome as PredictionScored events.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/fraudscore/internal/application/usecase"
	"github.com/bibbank/fraudscore/internal/domain/event"
	"github.com/bibbank/fraudscore/internal/domain/feature"
	"github.com/bibbank/fraudscore/internal/domain/port"
	"github.com/bibbank/fraudscore/pkg/kafka"
)

// Worker handles one input message at a time.
type Worker struct {
	predict   *usecase.Predict
	publisher port.EventPublisher
	logger    *slog.Logger
}

func NewWorker(predict *usecase.Predict, publisher port.EventPublisher, logger *slog.Logger) *Worker {
	return &Worker{predict: predict, publisher: publisher, logger: logger}
}

// Handle implements kafka.Handler. Records that can never score are wrapped
// in kafka.ErrDiscard so their offsets get committed; a failed publish is
// returned as is and the message is not committed.
func (w *Worker) Handle(ctx context.Context, msg kafka.Message) error {
	raw, err := decodeRecord(msg.Value)
	if err != nil {
		return fmt.Errorf("%w: %v", kafka.ErrDiscard, err)
	}

	p, err := w.predict.Score(ctx, raw)
	if err != nil {
		var verr *feature.ValidationError
		if errors.As(err, &verr) {
			w.logger.WarnContext(ctx, "rejected streamed record",
				slog.String("key", string(msg.Key)),
				slog.String("problems", verr.Error()),
			)
			return fmt.Errorf("%w: %v", kafka.ErrDiscard, err)
		}
		return err
	}

	evt := event.NewPredictionScored(
		string(msg.Key),
		amountOf(raw),
		p.Probability(),
		p.Label().String(),
		p.Reasons(),
		w.predict.Source(),
	)
	if err := w.publisher.Publish(ctx, evt); err != nil {
		return fmt.Errorf("failed to publish prediction: %w", err)
	}
	return nil
}

func decodeRecord(value []byte) (feature.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	var raw feature.RawRecord
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decode record: not a JSON object")
	}
	return raw, nil
}

// amountOf keeps the amount's literal digits when it has them.
func amountOf(raw feature.RawRecord) decimal.Decimal {
	switch v := raw[feature.RequiredField].(type) {
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case bool:
		if v {
			return decimal.NewFromInt(1)
		}
	}
	return decimal.Zero
}
