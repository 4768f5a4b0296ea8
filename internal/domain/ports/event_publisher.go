package ports

import (
	"context"

	"github.com/omnihive/backend/internal/domain/events"
)

// EventHandler receives one published payload
type EventHandler func(ctx context.Context, payload interface{}) error

// EventPublisher carries lifecycle notifications (status transitions, saved
// settings) to the admin channel and the task scheduler
type EventPublisher interface {
	// Subscribe returns a func that removes the handler
	Subscribe(eventType events.EventType, handler EventHandler) func()
	// Publish runs the handlers in subscription order and returns the first error
	Publish(ctx context.Context, eventType events.EventType, payload interface{}) error
}
