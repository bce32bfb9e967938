package services

import (
	"context"
	"log/slog"

	"github.com/quizhub/quiz-service/internal/events"
)

// publishEvent emits a domain event after commit. Failures are logged only.
func publishEvent(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, eventType events.EventType, data interface{}) {
	if publisher == nil {
		return
	}

	event := events.NewEvent(eventType, data)
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Error("Failed to publish event",
			"event_type", eventType,
			"event_id", event.ID,
			"error", err)
	}
}
