package events

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"
)

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

// EventBus dispatches events to the handlers subscribed to their type.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	inflight sync.WaitGroup
	logger   *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
	count := len(eb.handlers[eventType])
	eb.mu.Unlock()

	eb.logger.Debug("event handler subscribed", "event_type", eventType, "handlers", count)
}

// Publish starts every subscriber of event on its own goroutine and returns
// at once. Handlers keep running after ctx is cancelled; their failures are
// only logged. Use Wait to block until they finish.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := eb.subscribers(event)
	if len(handlers) == 0 {
		return nil
	}

	ctx = context.WithoutCancel(ctx)
	eb.inflight.Add(len(handlers))
	for _, handler := range handlers {
		go func(h Handler) {
			defer eb.inflight.Done()
			if err := h(ctx, event); err != nil {
				eb.logFailure(event, err)
			}
		}(handler)
	}
	return nil
}

// PublishSync runs every subscriber of event in order on the calling
// goroutine and returns their failures joined.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	var errs []error
	for _, handler := range eb.subscribers(event) {
		if err := handler(ctx, event); err != nil {
			eb.logFailure(event, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until every handler started by Publish has returned.
func (eb *EventBus) Wait() {
	eb.inflight.Wait()
}

func (eb *EventBus) subscribers(event Event) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	handlers := slices.Clone(eb.handlers[event.EventType()])
	if len(handlers) == 0 {
		eb.logger.Debug("event has no subscribers", "event_type", event.EventType(), "event_id", event.EventID())
	}
	return handlers
}

func (eb *EventBus) logFailure(event Event, err error) {
	eb.logger.Error("event handler failed",
		"event_type", event.EventType(),
		"event_id", event.EventID(),
		"error", err)
}
