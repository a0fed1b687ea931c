package services

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/domain/comment"
	"castfeed-backend/domain/content"
	"castfeed-backend/domain/engagement"
	"castfeed-backend/domain/events"
	pkgerrors "castfeed-backend/pkg/errors"

	"go.uber.org/zap"
)

// EngagementLedger owns the reaction record set and keeps the cached
// per-target counters in step with it. All idempotence rules live here:
// liking twice is a no-op, unliking something never liked is a no-op, and
// the counters never go negative.
type EngagementLedger struct {
	contents    ports.ContentRepository
	comments    ports.CommentRepository
	engagements ports.EngagementRepository
	bus         ports.EventBus
	logger      *zap.Logger
}

// NewEngagementLedger creates the ledger service
func NewEngagementLedger(
	contents ports.ContentRepository,
	comments ports.CommentRepository,
	engagements ports.EngagementRepository,
	bus ports.EventBus,
	logger *zap.Logger,
) *EngagementLedger {
	return &EngagementLedger{
		contents:    contents,
		comments:    comments,
		engagements: engagements,
		bus:         bus,
		logger:      logger,
	}
}

// LikeContent records a like on a piece of content. A repeated like from
// the same user changes nothing and returns the current state.
func (l *EngagementLedger) LikeContent(ctx context.Context, userID, contentID string) (*content.Content, error) {
	c, err := l.contents.FindByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted() {
		return nil, pkgerrors.NewNotFoundError("content")
	}

	existing, err := l.engagements.Find(ctx, userID, contentID, engagement.KindLike)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return c, nil
	}

	record, err := engagement.New(userID, contentID, engagement.KindLike)
	if err != nil {
		return nil, err
	}
	if err := l.engagements.Save(ctx, record); err != nil {
		// a concurrent like won the race; the state is what was asked for
		if pkgerrors.IsConflict(err) {
			return c, nil
		}
		return nil, err
	}

	if err := l.contents.ApplyEngagementDelta(ctx, contentID, engagement.KindLike, 1, userID, false); err != nil {
		return nil, err
	}
	c.ApplyEngagement(engagement.KindLike, userID)

	l.publish(ctx, events.NewEngagementAdded(contentID, userID, string(engagement.KindLike)))
	return c, nil
}

// UnlikeContent withdraws a like. Unliking content that was never liked is
// a no-op. Tombstoned content still accepts unlikes so users can withdraw
// reactions from deleted posts.
func (l *EngagementLedger) UnlikeContent(ctx context.Context, userID, contentID string) (*content.Content, error) {
	c, err := l.contents.FindByID(ctx, contentID)
	if err != nil {
		return nil, err
	}

	record, err := l.engagements.Find(ctx, userID, contentID, engagement.KindLike)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return c, nil
		}
		return nil, err
	}
	if err := l.engagements.Delete(ctx, record.ID); err != nil {
		return nil, err
	}

	if err := l.contents.ApplyEngagementDelta(ctx, contentID, engagement.KindLike, -1, userID, true); err != nil {
		return nil, err
	}
	c.RetractEngagement(engagement.KindLike, userID)

	l.publish(ctx, events.NewEngagementRemoved(contentID, userID, string(engagement.KindLike)))
	return c, nil
}

// LikeComment records a like on a comment, with the same idempotence rule
// as content likes.
func (l *EngagementLedger) LikeComment(ctx context.Context, userID, commentID string) (*comment.Comment, error) {
	cm, err := l.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if cm.IsDeleted() {
		return nil, pkgerrors.NewNotFoundError("comment")
	}

	existing, err := l.engagements.Find(ctx, userID, commentID, engagement.KindLike)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, err
	}
	if existing != nil {
		return cm, nil
	}

	record, err := engagement.New(userID, commentID, engagement.KindLike)
	if err != nil {
		return nil, err
	}
	if err := l.engagements.Save(ctx, record); err != nil {
		if pkgerrors.IsConflict(err) {
			return cm, nil
		}
		return nil, err
	}

	cm.ApplyLike(userID)
	if err := l.comments.Save(ctx, cm); err != nil {
		return nil, err
	}

	l.publish(ctx, events.NewEngagementAdded(commentID, userID, string(engagement.KindLike)))
	return cm, nil
}

// UnlikeComment withdraws a like from a comment
func (l *EngagementLedger) UnlikeComment(ctx context.Context, userID, commentID string) (*comment.Comment, error) {
	cm, err := l.comments.FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	record, err := l.engagements.Find(ctx, userID, commentID, engagement.KindLike)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return cm, nil
		}
		return nil, err
	}
	if err := l.engagements.Delete(ctx, record.ID); err != nil {
		return nil, err
	}

	cm.RetractLike(userID)
	if err := l.comments.Save(ctx, cm); err != nil {
		return nil, err
	}

	l.publish(ctx, events.NewEngagementRemoved(commentID, userID, string(engagement.KindLike)))
	return cm, nil
}

// RecordComment bumps the comment counter on a piece of content. Comment
// counts are occurrence based: the same user commenting twice counts twice.
func (l *EngagementLedger) RecordComment(ctx context.Context, userID, contentID string) error {
	if err := l.contents.ApplyEngagementDelta(ctx, contentID, engagement.KindComment, 1, userID, false); err != nil {
		return err
	}
	l.publish(ctx, events.NewEngagementAdded(contentID, userID, string(engagement.KindComment)))
	return nil
}

// RetractComment lowers the comment counter after a comment is removed
func (l *EngagementLedger) RetractComment(ctx context.Context, userID, contentID string) error {
	if err := l.contents.ApplyEngagementDelta(ctx, contentID, engagement.KindComment, -1, userID, false); err != nil {
		return err
	}
	l.publish(ctx, events.NewEngagementRemoved(contentID, userID, string(engagement.KindComment)))
	return nil
}

// ReconcileContent rebuilds the cached counters of one content from the
// authoritative record set and live comment count, and reports whether any
// drift was found.
func (l *EngagementLedger) ReconcileContent(ctx context.Context, contentID string) (bool, error) {
	c, err := l.contents.FindByID(ctx, contentID)
	if err != nil {
		return false, err
	}

	records, err := l.engagements.FindByTarget(ctx, contentID)
	if err != nil {
		return false, err
	}

	rebuilt := make(map[engagement.Kind]engagement.Summary)
	for _, r := range records {
		switch r.Kind {
		case engagement.KindQuote:
			rebuilt[r.Kind] = rebuilt[r.Kind].AddOccurrence(r.UserID)
		case engagement.KindLike, engagement.KindRecast:
			rebuilt[r.Kind] = rebuilt[r.Kind].Add(r.UserID)
		}
	}

	commentCount, err := l.comments.CountByContent(ctx, contentID)
	if err != nil {
		return false, err
	}
	if commentCount > 0 {
		rebuilt[engagement.KindComment] = engagement.Summary{Count: commentCount}
	}

	if !summariesDrifted(c.Engagements(), rebuilt) {
		return false, nil
	}

	l.logger.Warn("engagement counters drifted, rebuilding",
		zap.String("contentId", contentID),
	)
	c.ReplaceEngagements(rebuilt)
	if err := l.contents.Save(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}

func summariesDrifted(cached, rebuilt map[engagement.Kind]engagement.Summary) bool {
	for _, kind := range engagement.Kinds() {
		if cached[kind].Count != rebuilt[kind].Count {
			return true
		}
	}
	return false
}

func (l *EngagementLedger) publish(ctx context.Context, event events.DomainEvent) {
	if l.bus == nil {
		return
	}
	if err := l.bus.Publish(ctx, event); err != nil {
		l.logger.Warn("failed to publish engagement event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
