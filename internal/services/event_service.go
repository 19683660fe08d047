package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/activity-service/internal/events"
	"github.com/SAP-F-2025/activity-service/internal/models"
)

type eventService struct {
	publisher events.EventPublisher
	logger    *ServiceLogger
}

func NewEventService(publisher events.EventPublisher, logger *slog.Logger) EventService {
	return &eventService{
		publisher: publisher,
		logger:    NewServiceLogger(logger, "events"),
	}
}

// TriggerValidation publishes the validate event. Sessions showing activity
// react; an empty activity reaches every session.
func (s *eventService) TriggerValidation(ctx context.Context, activity string) (event *events.ActivityEvent, err error) {
	defer s.logger.track(ctx, "trigger_validation", activity, &err)()

	event = events.NewValidateEvent(activity)
	if err = s.publisher.Publish(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to publish validation trigger: %w", err)
	}
	return event, nil
}

// NotifyActivityUpdated and NotifyResultsSaved are informational; callers log
// and ignore their errors.
func (s *eventService) NotifyActivityUpdated(ctx context.Context, name string, activityType models.ActivityType) error {
	event := events.NewActivityEvent(events.EventActivityUpdated, name, map[string]any{
		"type": activityType,
	})
	return s.publisher.Publish(ctx, event)
}

func (s *eventService) NotifyResultsSaved(ctx context.Context, summary *models.ResultSummary) error {
	event := events.NewActivityEvent(events.EventResultsSaved, summary.Activity, map[string]any{
		"type":    summary.Type,
		"correct": summary.Correct,
		"total":   summary.Total,
	})
	return s.publisher.Publish(ctx, event)
}
