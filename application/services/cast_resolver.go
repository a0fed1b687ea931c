package services

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/domain/content"
	"castfeed-backend/domain/engagement"
	"castfeed-backend/domain/events"
	pkgerrors "castfeed-backend/pkg/errors"

	"go.uber.org/zap"
)

// CastResolver creates and destroys derived posts. Chains collapse at
// creation time: recasting or quoting a recast lands on the recast's
// original, so every recast counter lives on a root post and chains never
// grow beyond one hop. Quoting a quote targets the quote itself, since a
// quote is an authored post in its own right.
type CastResolver struct {
	contents    ports.ContentRepository
	engagements ports.EngagementRepository
	bus         ports.EventBus
	logger      *zap.Logger
}

// NewCastResolver creates the resolver service
func NewCastResolver(
	contents ports.ContentRepository,
	engagements ports.EngagementRepository,
	bus ports.EventBus,
	logger *zap.Logger,
) *CastResolver {
	return &CastResolver{
		contents:    contents,
		engagements: engagements,
		bus:         bus,
		logger:      logger,
	}
}

// ResolveTarget returns the post a new recast or quote of source should
// point at. A recast is transparent and forwards to its original; anything
// else is its own target.
func (r *CastResolver) ResolveTarget(ctx context.Context, source *content.Content) (*content.Content, error) {
	if !source.IsRecast() {
		return source, nil
	}
	ref := source.OriginalRef()
	if ref == nil {
		return nil, pkgerrors.NewInternalError("recast missing source reference", nil)
	}
	target, err := r.contents.FindByID(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	return target, nil
}

// Recast creates a recast of the given post for the user, under the given
// pre-generated id. The recast attaches to the resolved root; a second
// recast of the same root by the same user is rejected with a conflict.
func (r *CastResolver) Recast(ctx context.Context, recastID, userID, sourceID string) (*content.Content, error) {
	target, err := r.loadTarget(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	if existing, err := r.contents.FindRecastByAuthor(ctx, userID, target.ID()); err == nil && existing != nil {
		return nil, pkgerrors.NewConflictError("content already recasted")
	} else if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}

	recast, err := content.NewRecast(recastID, userID, target.Snapshot())
	if err != nil {
		return nil, err
	}

	record, err := engagement.NewWithRef(userID, target.ID(), engagement.KindRecast, recast.ID())
	if err != nil {
		return nil, err
	}
	if err := r.engagements.Save(ctx, record); err != nil {
		if pkgerrors.IsConflict(err) {
			return nil, pkgerrors.NewConflictError("content already recasted")
		}
		return nil, err
	}

	if err := r.contents.Save(ctx, recast); err != nil {
		return nil, err
	}
	if err := r.contents.SaveRevision(ctx, recast.CurrentRevision()); err != nil {
		return nil, err
	}

	if err := r.contents.ApplyEngagementDelta(ctx, target.ID(), engagement.KindRecast, 1, userID, false); err != nil {
		return nil, err
	}

	r.publishAggregate(ctx, recast)
	r.publish(ctx, events.NewEngagementAdded(target.ID(), userID, string(engagement.KindRecast)))
	return recast, nil
}

// Quote creates a quote of the given post with the user's commentary.
// Unlike recasts, a user may quote the same post any number of times; the
// quote counter on the target counts occurrences.
func (r *CastResolver) Quote(ctx context.Context, quoteID, userID, sourceID string, payload content.Payload) (*content.Content, error) {
	target, err := r.loadTarget(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	quote, err := content.NewQuote(quoteID, userID, payload, target.Snapshot())
	if err != nil {
		return nil, err
	}

	record, err := engagement.NewWithRef(userID, target.ID(), engagement.KindQuote, quote.ID())
	if err != nil {
		return nil, err
	}
	if err := r.engagements.Save(ctx, record); err != nil {
		return nil, err
	}

	if err := r.contents.Save(ctx, quote); err != nil {
		return nil, err
	}
	if err := r.contents.SaveRevision(ctx, quote.CurrentRevision()); err != nil {
		return nil, err
	}

	if err := r.contents.ApplyEngagementDelta(ctx, target.ID(), engagement.KindQuote, 1, userID, false); err != nil {
		return nil, err
	}

	r.publishAggregate(ctx, quote)
	r.publish(ctx, events.NewEngagementAdded(target.ID(), userID, string(engagement.KindQuote)))
	return quote, nil
}

// Delete soft deletes a post owned by the user and runs the cascade in
// order: first the counters on the source post are decremented if this was
// a derived post, then the snapshots carried by posts derived from this one
// flip to tombstones, and last the post itself is tombstoned and its
// deletion announced so timelines drop it. Revisions are kept.
func (r *CastResolver) Delete(ctx context.Context, userID, contentID string) error {
	c, err := r.contents.FindByID(ctx, contentID)
	if err != nil {
		return err
	}
	if c.IsDeleted() {
		return pkgerrors.NewNotFoundError("content")
	}
	if c.AuthorID() != userID {
		return pkgerrors.NewForbiddenError("content belongs to another user")
	}

	if ref := c.OriginalRef(); ref != nil {
		if err := r.withdrawFromTarget(ctx, c, ref.ID); err != nil {
			return err
		}
	}

	derived, err := r.contents.FindDerived(ctx, contentID)
	if err != nil {
		return err
	}
	for _, d := range derived {
		d.MarkOriginalTombstoned()
		if err := r.contents.Save(ctx, d); err != nil {
			return err
		}
	}

	if err := c.SoftDelete(); err != nil {
		return err
	}
	if err := r.contents.Save(ctx, c); err != nil {
		return err
	}
	r.publishAggregate(ctx, c)
	return nil
}

func (r *CastResolver) loadTarget(ctx context.Context, sourceID string) (*content.Content, error) {
	source, err := r.contents.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source.IsDeleted() {
		return nil, pkgerrors.NewNotFoundError("content")
	}
	target, err := r.ResolveTarget(ctx, source)
	if err != nil {
		return nil, err
	}
	if target.IsDeleted() {
		return nil, pkgerrors.NewNotFoundError("content")
	}
	return target, nil
}

// withdrawFromTarget reverses the engagement a derived post registered on
// its target when it was created. The target may itself already be
// tombstoned; its counters are still settled.
func (r *CastResolver) withdrawFromTarget(ctx context.Context, derived *content.Content, targetID string) error {
	record, err := r.engagements.FindByRef(ctx, targetID, derived.ID())
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			r.logger.Warn("derived post has no engagement record on its target",
				zap.String("contentId", derived.ID()),
				zap.String("targetId", targetID),
			)
			return nil
		}
		return err
	}
	if err := r.engagements.Delete(ctx, record.ID); err != nil {
		return err
	}

	kind := engagement.KindRecast
	dropParticipant := true
	if derived.IsQuote() {
		// quote counts are occurrence based; the participant entry stays
		// until reconciliation settles whether other quotes remain
		kind = engagement.KindQuote
		dropParticipant = false
	}
	if err := r.contents.ApplyEngagementDelta(ctx, targetID, kind, -1, derived.AuthorID(), dropParticipant); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	r.publish(ctx, events.NewEngagementRemoved(targetID, derived.AuthorID(), string(kind)))
	return nil
}

func (r *CastResolver) publishAggregate(ctx context.Context, c *content.Content) {
	for _, event := range c.GetUncommittedEvents() {
		r.publish(ctx, event)
	}
	c.MarkEventsAsCommitted()
}

func (r *CastResolver) publish(ctx context.Context, event events.DomainEvent) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, event); err != nil {
		r.logger.Warn("failed to publish content event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
