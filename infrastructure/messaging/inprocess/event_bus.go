// Package inprocess implements the event bus port with goroutine
// dispatch inside the service process.
package inprocess

import (
	"context"
	"sync"

	"castfeed-backend/application/ports"
	"castfeed-backend/domain/events"

	"go.uber.org/zap"
)

// EventBus routes domain events to subscribers on fresh goroutines. A
// subscriber panic or failure never reaches the publisher; projections
// that miss an event are settled by reconciliation.
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// NewEventBus creates a new in-process event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		handlers: make(map[string][]ports.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type
func (b *EventBus) Subscribe(eventType string, handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish dispatches an event to every subscriber asynchronously
func (b *EventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.RLock()
	handlers := append([]ports.EventHandler{}, b.handlers[event.GetEventType()]...)
	b.mu.RUnlock()

	// detach from the request lifecycle: subscribers outlive the request
	// that published the event
	dispatchCtx := context.WithoutCancel(ctx)

	for _, handler := range handlers {
		h := handler
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					b.logger.Error("event handler panicked",
						zap.String("eventType", event.GetEventType()),
						zap.Any("panic", rec),
					)
				}
			}()
			h(dispatchCtx, event)
		}()
	}
	return nil
}

// Wait blocks until every in-flight dispatch has finished. Used by the
// test suites and graceful shutdown.
func (b *EventBus) Wait() {
	b.wg.Wait()
}
