package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/omnihive/backend/internal/domain/events"
	"github.com/omnihive/backend/internal/domain/ports"
)

// EventType is an alias to the domain type
type EventType = events.EventType

// HostEvent is one event as delivered to async subscribers
type HostEvent struct {
	Type      EventType `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp int64     `json:"timestamp"`
}

// EventHandler is a function that handles an event
type EventHandler = ports.EventHandler

type subscription struct {
	id      uint64
	handler EventHandler
}

// EventBus is the in-process publish/subscribe channel between the lifecycle
// manager and the admin channel. It implements ports.EventPublisher.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[EventType][]subscription
	nextID   uint64
	logger   logrus.FieldLogger
}

var _ ports.EventPublisher = (*EventBus)(nil)

// NewEventBus creates a new EventBus instance
func NewEventBus(logger logrus.FieldLogger) *EventBus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EventBus{
		handlers: make(map[EventType][]subscription),
		logger:   logger,
	}
}

// Subscribe registers a handler for a specific event type.
// Returns an unsubscribe function.
func (eb *EventBus) Subscribe(eventType EventType, handler EventHandler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextID++
	id := eb.nextID
	eb.handlers[eventType] = append(eb.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()

		subs := eb.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				eb.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish runs every handler of eventType in subscription order and stops at
// the first error
func (eb *EventBus) Publish(ctx context.Context, eventType EventType, payload any) error {
	eb.mu.RLock()
	subs := append([]subscription(nil), eb.handlers[eventType]...)
	eb.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler(ctx, payload); err != nil {
			return fmt.Errorf("event bus handler error for %s: %w", eventType, err)
		}
	}
	return nil
}

// PublishAsync publishes an event on its own goroutine
func (eb *EventBus) PublishAsync(eventType EventType, payload any) {
	event := HostEvent{Type: eventType, Payload: payload, Timestamp: time.Now().Unix()}
	go func() {
		if err := eb.Publish(context.Background(), event.Type, event.Payload); err != nil {
			eb.logger.WithError(err).Warnf("⚠️ Async event %s failed", event.Type)
		}
	}()
}

// Clear removes all handlers
func (eb *EventBus) Clear() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.handlers = make(map[EventType][]subscription)
}
