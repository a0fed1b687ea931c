// Package events wires domain events to their in-process consumers.
package events

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/application/services"
	domainevents "castfeed-backend/domain/events"

	"go.uber.org/zap"
)

// FeedListener projects content lifecycle events into viewer timelines.
// Materialization is asynchronous: publishing a post succeeds even if the
// fan-out lags behind.
type FeedListener struct {
	contents     ports.ContentRepository
	materializer *services.FeedMaterializer
	logger       *zap.Logger
}

// NewFeedListener creates the listener
func NewFeedListener(
	contents ports.ContentRepository,
	materializer *services.FeedMaterializer,
	logger *zap.Logger,
) *FeedListener {
	return &FeedListener{
		contents:     contents,
		materializer: materializer,
		logger:       logger,
	}
}

// Register subscribes the listener to the content lifecycle events
func (l *FeedListener) Register(bus ports.EventBus) {
	bus.Subscribe(domainevents.EventTypeContentCreated, l.onContentChanged)
	bus.Subscribe(domainevents.EventTypeContentUpdated, l.onContentChanged)
	bus.Subscribe(domainevents.EventTypeContentDeleted, l.onContentDeleted)
}

func (l *FeedListener) onContentChanged(ctx context.Context, event domainevents.DomainEvent) {
	c, err := l.contents.FindByID(ctx, event.GetAggregateID())
	if err != nil {
		l.logger.Error("cannot load content for feed materialization",
			zap.String("contentId", event.GetAggregateID()),
			zap.Error(err),
		)
		return
	}
	if err := l.materializer.Materialize(ctx, c); err != nil {
		l.logger.Error("feed materialization failed",
			zap.String("contentId", c.ID()),
			zap.Error(err),
		)
	}
}

func (l *FeedListener) onContentDeleted(ctx context.Context, event domainevents.DomainEvent) {
	if err := l.materializer.Remove(ctx, event.GetAggregateID()); err != nil {
		l.logger.Error("feed removal failed",
			zap.String("contentId", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

// Forwarder relays every event on the in-process bus to the external
// publisher, so downstream consumers outside this service see the same
// stream the timelines are built from.
type Forwarder struct {
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewForwarder creates the forwarder
func NewForwarder(publisher ports.EventPublisher, logger *zap.Logger) *Forwarder {
	return &Forwarder{publisher: publisher, logger: logger}
}

// Register subscribes the forwarder to every event type
func (f *Forwarder) Register(bus ports.EventBus) {
	for _, eventType := range []string{
		domainevents.EventTypeContentCreated,
		domainevents.EventTypeContentUpdated,
		domainevents.EventTypeContentDeleted,
		domainevents.EventTypeEngagementAdded,
		domainevents.EventTypeEngagementRemoved,
		domainevents.EventTypeCommentAdded,
		domainevents.EventTypeCommentRemoved,
	} {
		bus.Subscribe(eventType, f.forward)
	}
}

func (f *Forwarder) forward(ctx context.Context, event domainevents.DomainEvent) {
	if err := f.publisher.Publish(ctx, event); err != nil {
		f.logger.Warn("failed to forward event to external bus",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
