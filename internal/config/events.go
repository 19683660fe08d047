package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventConfig holds configuration for the activity event bus
type EventConfig struct {
	Enabled      bool
	Publisher    string // gochannel, kafka or mock
	KafkaBrokers string
	Topic        string
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return splitList(c.KafkaBrokers)
}

// Bus is the publisher side handed to services and the subscriber side
// consumed by the relay. Subscriber is nil when events are disabled.
type Bus struct {
	Publisher  events.EventPublisher
	Subscriber message.Subscriber
}

// CreateEventBus builds the bus described by the configuration
func (c *EventConfig) CreateEventBus(logger *slog.Logger) (*Bus, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return &Bus{Publisher: events.NewMockEventPublisher(logger)}, nil
	}

	switch strings.ToLower(c.Publisher) {
	case "kafka":
		logger.Info("Creating Kafka event bus",
			"brokers", c.KafkaBrokers,
			"topic", c.Topic)

		publisher, err := events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.Topic,
			Logger:       logger,
		})
		if err != nil {
			return nil, err
		}
		subscriber, err := events.NewKafkaSubscriber(c.GetKafkaBrokers(), logger)
		if err != nil {
			_ = publisher.Close()
			return nil, err
		}
		return &Bus{Publisher: publisher, Subscriber: subscriber}, nil
	case "gochannel":
		logger.Info("Using in-process event bus", "topic", c.Topic)
		ch := events.NewGoChannel(logger)
		return &Bus{
			Publisher:  events.NewWatermillEventPublisher(ch, c.Topic, logger),
			Subscriber: ch,
		}, nil
	case "mock":
		logger.Info("Using mock event publisher")
		return &Bus{Publisher: events.NewMockEventPublisher(logger)}, nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return &Bus{Publisher: events.NewMockEventPublisher(logger)}, nil
	}
}
