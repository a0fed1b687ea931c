// Package ports defines the persistence and messaging interfaces the
// application layer depends on. Implementations live under
// infrastructure/persistence and infrastructure/messaging.
package ports

import (
	"context"

	"castfeed-backend/domain/comment"
	"castfeed-backend/domain/content"
	"castfeed-backend/domain/engagement"
	"castfeed-backend/domain/events"
	"castfeed-backend/domain/feed"
	"castfeed-backend/pkg/common"
)

// ContentRepository persists content aggregates and their revision history.
// FindByID returns tombstoned content as well; callers that must not act on
// deleted content check IsDeleted themselves.
type ContentRepository interface {
	Save(ctx context.Context, c *content.Content) error
	FindByID(ctx context.Context, id string) (*content.Content, error)
	FindByAuthor(ctx context.Context, authorID string, page common.PaginationParams) ([]*content.Content, int, error)

	// FindDerived returns the live recasts and quotes whose snapshot
	// points at the given original.
	FindDerived(ctx context.Context, originalID string) ([]*content.Content, error)

	// FindRecastByAuthor returns the author's live recast of the given
	// original, or a not-found error. Used to reject duplicate recasts.
	FindRecastByAuthor(ctx context.Context, authorID, originalID string) (*content.Content, error)

	// ApplyEngagementDelta adjusts one cached counter by delta (+1 or -1)
	// as a single atomic store operation, so concurrent reactions against
	// the same content never lose updates to a read-modify-write race and
	// never touch the other counter kinds. A positive delta records userID
	// as a participant; a negative delta floors the count at zero and drops
	// the participant only when dropParticipant is set (occurrence-based
	// kinds keep their participant entries until reconciliation).
	ApplyEngagementDelta(ctx context.Context, contentID string, kind engagement.Kind, delta int, userID string, dropParticipant bool) error

	SaveRevision(ctx context.Context, rev content.Revision) error
	FindRevisions(ctx context.Context, contentID string, page common.PaginationParams) ([]content.Revision, int, error)
	FindRevision(ctx context.Context, contentID string, seq int) (*content.Revision, error)
}

// EngagementRepository persists the authoritative engagement record set.
// Save must reject a second record for the same (user, target, kind) with a
// conflict error so the ledger can rely on storage-level idempotence.
type EngagementRepository interface {
	Save(ctx context.Context, e *engagement.Engagement) error
	Find(ctx context.Context, userID, targetID string, kind engagement.Kind) (*engagement.Engagement, error)

	// FindByRef returns the record tied to a derived post, used when a
	// recast or quote is deleted and its reaction must be withdrawn.
	FindByRef(ctx context.Context, targetID, refID string) (*engagement.Engagement, error)

	Delete(ctx context.Context, id string) error
	FindByTarget(ctx context.Context, targetID string) ([]*engagement.Engagement, error)
	CountByTarget(ctx context.Context, targetID string, kind engagement.Kind) (int, error)
}

// CommentRepository persists comment threads
type CommentRepository interface {
	Save(ctx context.Context, c *comment.Comment) error
	FindByID(ctx context.Context, id string) (*comment.Comment, error)
	FindByContent(ctx context.Context, contentID string, page common.PaginationParams) ([]*comment.Comment, int, error)
	FindReplies(ctx context.Context, parentID string, page common.PaginationParams) ([]*comment.Comment, int, error)
	Delete(ctx context.Context, id string) error
	CountByContent(ctx context.Context, contentID string) (int, error)
}

// FeedRepository persists materialized timeline items per viewer
type FeedRepository interface {
	Save(ctx context.Context, item *feed.Item) error
	FindByID(ctx context.Context, viewerID, itemID string) (*feed.Item, error)

	// FindByGroup returns the viewer's item for an aggregator group, or a
	// not-found error when nothing has been materialized for that group.
	FindByGroup(ctx context.Context, viewerID, aggregatorType, groupKey string) (*feed.Item, error)

	// FindTimeline pages a viewer's items newest first. An empty cursor
	// starts from the top; the returned cursor is empty on the last page.
	FindTimeline(ctx context.Context, viewerID, cursor string, limit int) ([]*feed.Item, string, error)

	// DeleteByContent removes every viewer's items that render the given
	// content, across all timelines.
	DeleteByContent(ctx context.Context, contentID string) error
}

// RelationshipRepository tracks the follow graph used for feed fan-out
type RelationshipRepository interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	FollowersOf(ctx context.Context, userID string) ([]string, error)
	FollowingOf(ctx context.Context, userID string) ([]string, error)
}

// MediaSigner rewrites media URLs inside a payload at view time. Production
// deployments plug in the CDN signer; the default implementation returns the
// payload unchanged. Signing never fails a read: implementations fall back
// to the raw URL on error.
type MediaSigner interface {
	SignPayload(ctx context.Context, p content.Payload) content.Payload
}

// EventHandler consumes one domain event
type EventHandler func(ctx context.Context, event events.DomainEvent)

// EventBus routes domain events to in-process subscribers
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	Subscribe(eventType string, handler EventHandler)
}

// EventPublisher ships domain events to the external bus
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}
