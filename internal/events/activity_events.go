package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of activity events on the bus
type EventType string

const (
	// EventValidate asks every open activity session to run its own validation.
	EventValidate EventType = "validate"

	EventActivityUpdated EventType = "activity.updated"
	EventResultsSaved    EventType = "results.saved"
)

const (
	eventSource  = "activity-service"
	eventVersion = "1.0"
)

// ActivityEvent is the envelope for every event on the bus. Consumers only
// need Type; the rest is for tracing.
type ActivityEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	Activity  string         `json:"activity,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewActivityEvent builds an event with a fresh ID. activity may be empty for
// events addressed to every session.
func NewActivityEvent(eventType EventType, activity string, data map[string]any) *ActivityEvent {
	return &ActivityEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Activity:  activity,
		Data:      data,
	}
}

// NewValidateEvent builds the validation trigger.
func NewValidateEvent(activity string) *ActivityEvent {
	return NewActivityEvent(EventValidate, activity, nil)
}
