package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Relay consumes activity events from the bus and hands them to the hub.
type Relay struct {
	subscriber message.Subscriber
	hub        *Hub
	topic      string
	logger     *slog.Logger
}

func NewRelay(subscriber message.Subscriber, hub *Hub, topic string, logger *slog.Logger) *Relay {
	return &Relay{subscriber: subscriber, hub: hub, topic: topic, logger: logger}
}

// NewKafkaSubscriber creates a Kafka subscriber in its own consumer group, so
// every service instance sees every event.
func NewKafkaSubscriber(brokers []string, logger *slog.Logger) (*kafka.Subscriber, error) {
	sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:       brokers,
		Unmarshaler:   kafka.DefaultMarshaler{},
		ConsumerGroup: "activity-service-" + watermill.NewShortUUID(),
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return sub, nil
}

// Run blocks until ctx is cancelled or the subscription closes.
func (r *Relay) Run(ctx context.Context) error {
	messages, err := r.subscriber.Subscribe(ctx, r.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.topic, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.handle(msg)
		}
	}
}

func (r *Relay) handle(msg *message.Message) {
	defer msg.Ack()

	var event ActivityEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		r.logger.Warn("Discarding malformed activity event", "message_id", msg.UUID, "error", err)
		return
	}
	r.hub.Broadcast(event)
}
