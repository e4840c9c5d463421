package messaging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/strokeguard/strokeguard/internal/domain/port"
	"github.com/strokeguard/strokeguard/pkg/events"
	"github.com/strokeguard/strokeguard/pkg/kafka"
)

// HeaderEventType carries the event type on every published message.
const HeaderEventType = "event-type"

// Producer is the subset of *kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, messages ...kafka.Message) error
}

// KafkaPublisher implements port.EventPublisher using Kafka.
type KafkaPublisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
}

var _ port.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a new Kafka event publisher. An empty topic
// falls back to the producer's default.
func NewKafkaPublisher(producer Producer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish wraps each event in an envelope keyed by aggregate ID and sends
// them in one batch.
func (p *KafkaPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(evts))
	for _, evt := range evts {
		env, err := events.NewEnvelope(evt)
		if err != nil {
			return err
		}
		value, err := env.Marshal()
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(evt.AggregateID()),
			Value:   value,
			Headers: map[string]string{HeaderEventType: evt.EventType()},
		})

		p.logger.Info("publishing event",
			slog.String("event_type", evt.EventType()),
			slog.String("event_id", evt.EventID()),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(value)),
		)
	}

	if err := p.producer.Publish(ctx, p.topic, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d events: %w", len(msgs), err)
	}
	return nil
}

// LogPublisher implements port.EventPublisher by logging events. It stands
// in when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

var _ port.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a publisher that only logs.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs each event at info level with its payload at debug level.
func (p *LogPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	for _, evt := range evts {
		env, err := events.NewEnvelope(evt)
		if err != nil {
			return err
		}
		p.logger.Info("domain event",
			slog.String("event_type", env.EventType),
			slog.String("aggregate_id", env.AggregateID),
		)
		p.logger.Debug("event payload",
			slog.String("event_type", env.EventType),
			slog.String("payload", string(env.Payload)),
		)
	}
	return nil
}
