package commands

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/domain/events"

	"go.uber.org/zap"
)

type eventSource interface {
	GetUncommittedEvents() []events.DomainEvent
	MarkEventsAsCommitted()
}

// publishAggregate drains an aggregate's raised events onto the bus. A
// publish failure is logged, not returned: the state change has already
// been persisted and projections catch up through reconciliation.
func publishAggregate(ctx context.Context, bus ports.EventBus, src eventSource, logger *zap.Logger) {
	if bus == nil {
		return
	}
	for _, event := range src.GetUncommittedEvents() {
		if err := bus.Publish(ctx, event); err != nil {
			logger.Warn("failed to publish domain event",
				zap.String("eventType", event.GetEventType()),
				zap.Error(err),
			)
		}
	}
	src.MarkEventsAsCommitted()
}
