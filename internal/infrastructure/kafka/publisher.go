package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/creditrisk/pkg/events"
	pkgkafka "github.com/bibbank/creditrisk/pkg/kafka"
)

// MessageProducer is satisfied by *pkgkafka.Producer.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// Publisher implements port.EventPublisher using Kafka. Each event goes to
// the topic named after its event type, keyed by aggregate ID so all events
// of one assessment land on the same partition.
type Publisher struct {
	producer MessageProducer
	logger   *slog.Logger
}

// NewPublisher creates a new Kafka event publisher.
func NewPublisher(producer MessageProducer, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   logger,
	}
}

// Publish sends domain events to Kafka.
func (p *Publisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	byTopic := make(map[string][]pkgkafka.Message)
	var topics []string

	for _, evt := range domainEvents {
		eventType := evt.EventType()

		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
		}

		p.logger.DebugContext(ctx, "publishing event",
			slog.String("event_type", eventType),
			slog.String("aggregate_id", evt.AggregateID().String()),
			slog.Int("payload_size", len(payload)),
		)

		if _, seen := byTopic[eventType]; !seen {
			topics = append(topics, eventType)
		}
		byTopic[eventType] = append(byTopic[eventType], pkgkafka.Message{
			Key:   []byte(evt.AggregateID().String()),
			Value: payload,
			Headers: map[string]string{
				"event_type": eventType,
				"event_id":   evt.EventID().String(),
				"tenant_id":  evt.TenantID().String(),
			},
		})
	}

	for _, topic := range topics {
		if err := p.producer.Publish(ctx, topic, byTopic[topic]...); err != nil {
			return fmt.Errorf("failed to publish events to topic %s: %w", topic, err)
		}
	}
	return nil
}

// LogPublisher logs events instead of shipping them. It stands in for
// Publisher when no brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish implements port.EventPublisher.
func (p *LogPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	for _, evt := range domainEvents {
		p.logger.InfoContext(ctx, "domain event",
			slog.String("event_type", evt.EventType()),
			slog.String("aggregate_id", evt.AggregateID().String()),
			slog.String("tenant_id", evt.TenantID().String()),
		)
	}
	return nil
}
