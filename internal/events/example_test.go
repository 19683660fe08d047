package events_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/activity-service/internal/events"
)

// Example wires the in-process bus the way the service does when Kafka is
// not configured: publisher and relay share a Go channel and the relay feeds
// the hub that backs the SSE endpoint.
func Example() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := events.NewGoChannel(logger)
	defer bus.Close()

	hub := events.NewHub(logger)
	session := hub.Register("photosynthesis")
	defer hub.Unregister(session)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go events.NewRelay(bus, hub, "activity.validate", logger).Run(ctx)

	publisher := events.NewWatermillEventPublisher(bus, "activity.validate", logger)
	for {
		_ = publisher.Publish(ctx, events.NewValidateEvent("photosynthesis"))
		select {
		case event := <-session.Outbound:
			fmt.Println(event.Type, event.Activity)
			return
		case <-time.After(20 * time.Millisecond):
		}
	}

	// Output: validate photosynthesis
}
