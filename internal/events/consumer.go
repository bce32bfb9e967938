package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
)

// EventHandler processes one decoded event
type EventHandler func(ctx context.Context, event *Event) error

// Consume subscribes to topic and hands every event to handle in a background
// goroutine. It returns once the subscription is live; delivery stops when ctx
// is cancelled or the subscriber is closed.
//
// Undecodable messages are acked and dropped. A handler error nacks the
// message so the pub/sub can redeliver it.
func Consume(ctx context.Context, subscriber message.Subscriber, topic string, logger *slog.Logger, handle EventHandler) error {
	messages, err := subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				logger.Error("Dropping undecodable event", "message_id", msg.UUID, "error", err)
				msg.Ack()
				continue
			}

			if err := handle(msg.Context(), &event); err != nil {
				logger.Error("Event handler failed", "event_id", event.ID, "event_type", event.Type, "error", err)
				msg.Nack()
				continue
			}
			msg.Ack()
		}
	}()

	return nil
}

// LogEvent is the in-process consumer used when no broker is configured
func LogEvent(logger *slog.Logger) EventHandler {
	return func(ctx context.Context, event *Event) error {
		logger.InfoContext(ctx, "Domain event",
			"event_id", event.ID,
			"event_type", event.Type,
			"timestamp", event.Timestamp)
		return nil
	}
}
