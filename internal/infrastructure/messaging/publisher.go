package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/fraudscore/pkg/events"
	pkgkafka "github.com/bibbank/fraudscore/pkg/kafka"
)

// HeaderEventType carries the event type on every published message.
const HeaderEventType = "event_type"

// MessageProducer is the part of pkg/kafka.Producer the publisher uses.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// KafkaPublisher implements port.EventPublisher using Kafka. Messages are
// keyed by aggregate ID so one upload's events stay ordered.
type KafkaPublisher struct {
	producer MessageProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaPublisher creates a new Kafka event publisher.
func NewKafkaPublisher(producer MessageProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, logger: logger}
}

// Publish sends domain events as JSON envelopes in one batch.
func (p *KafkaPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(domainEvents))
	for _, evt := range domainEvents {
		payload, err := events.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing event",
			slog.String("event_type", evt.EventType()),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(payload)),
		)

		messages = append(messages, pkgkafka.Message{
			Key:     []byte(evt.AggregateID().String()),
			Value:   payload,
			Headers: map[string]string{HeaderEventType: evt.EventType()},
		})
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

// LogPublisher logs events instead of sending them. It serves when no
// brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	for _, evt := range domainEvents {
		p.logger.InfoContext(ctx, "domain event",
			slog.String("event_type", evt.EventType()),
			slog.String("aggregate_type", evt.AggregateType()),
			slog.String("aggregate_id", evt.AggregateID().String()),
		)
	}
	return nil
}
