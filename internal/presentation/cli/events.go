package cli

import (
	"context"
	"errors"
	"fmt"

	urfave "github.com/urfave/cli/v3"

	"github.com/strokeguard/strokeguard/pkg/events"
	"github.com/strokeguard/strokeguard/pkg/kafka"
)

func (a *app) eventsCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "events",
		Usage: "Inspect service lifecycle events",
		Commands: []*urfave.Command{
			{
				Name:  "tail",
				Usage: "Follow startup and degradation events until interrupted",
				Flags: []urfave.Flag{
					&urfave.StringSliceFlag{
						Name:    "brokers",
						Usage:   "Kafka bootstrap brokers",
						Sources: urfave.EnvVars("KAFKA_BROKERS"),
					},
					&urfave.StringFlag{
						Name:    "topic",
						Usage:   "Lifecycle event topic",
						Value:   "strokeguard.inference.events",
						Sources: urfave.EnvVars("KAFKA_TOPIC"),
					},
					&urfave.StringFlag{
						Name:  "group",
						Usage: "Consumer group; empty reads new events without committing offsets",
					},
				},
				Action: a.tailEvents,
			},
		},
	}
}

func (a *app) tailEvents(ctx context.Context, cmd *urfave.Command) error {
	cfg := kafka.Config{
		Brokers:       cmd.StringSlice("brokers"),
		Topic:         cmd.String("topic"),
		ConsumerGroup: cmd.String("group"),
		ClientID:      "strokectl",
	}
	if !cfg.Enabled() {
		return errors.New("--brokers or KAFKA_BROKERS is required")
	}

	consumer, err := kafka.NewConsumer(cfg, cfg.Topic, a.printEvent, a.logger)
	if err != nil {
		return err
	}
	defer consumer.Close() //nolint:errcheck

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *app) printEvent(_ context.Context, msg kafka.Message) error {
	env, err := events.DecodeEnvelope(msg.Value)
	if err != nil {
		a.logger.Warn("skipping undecodable message", "key", string(msg.Key), "error", err)
		return nil
	}
	if err := a.encode(env); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}
