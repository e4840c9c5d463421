//go:build integration

package messaging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strokeguard/strokeguard/internal/domain/event"
	"github.com/strokeguard/strokeguard/internal/infrastructure/messaging"
	"github.com/strokeguard/strokeguard/pkg/events"
	"github.com/strokeguard/strokeguard/pkg/kafka"
	"github.com/strokeguard/strokeguard/pkg/observability"
	"github.com/strokeguard/strokeguard/pkg/testutil"
)

func TestKafkaPublisher_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	defer kc.Cleanup(t)

	cfg := kafka.Config{
		Brokers:       kc.Brokers,
		Topic:         "strokeguard.inference.events",
		ConsumerGroup: "strokeguard-it",
	}
	producer, err := kafka.NewProducer(cfg)
	require.NoError(t, err)
	defer producer.Close()

	pub := messaging.NewKafkaPublisher(producer, cfg.Topic, observability.NopLogger())
	require.NoError(t, pub.Publish(ctx, lifecycleEvents()...))

	received := make(chan events.Envelope, 2)
	consumer, err := kafka.NewConsumer(cfg, cfg.Topic, func(_ context.Context, msg kafka.Message) error {
		env, err := events.DecodeEnvelope(msg.Value)
		if err != nil {
			return err
		}
		received <- env
		return nil
	}, observability.NopLogger())
	require.NoError(t, err)
	defer consumer.Close()

	consumeCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() { _ = consumer.Start(consumeCtx) }()

	var types []string
	for len(types) < 2 {
		select {
		case env := <-received:
			types = append(types, env.EventType)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for events, got %v", types)
		}
	}
	assert.ElementsMatch(t, []string{event.EventTypeStartupCompleted, event.EventTypeScorerDegraded}, types)
}
