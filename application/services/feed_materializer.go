package services

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/domain/content"
	"castfeed-backend/domain/feed"
	pkgerrors "castfeed-backend/pkg/errors"

	"go.uber.org/zap"
)

// FeedMaterializer turns published content into per-viewer timeline items.
// Fan-out covers the author's followers plus the author, so users see their
// own posts. The aggregator strategy decides whether fresh content becomes
// a new item or folds into an existing one.
type FeedMaterializer struct {
	feeds         ports.FeedRepository
	relationships ports.RelationshipRepository
	strategy      feed.Strategy
	logger        *zap.Logger
}

// NewFeedMaterializer creates the materializer service
func NewFeedMaterializer(
	feeds ports.FeedRepository,
	relationships ports.RelationshipRepository,
	strategy feed.Strategy,
	logger *zap.Logger,
) *FeedMaterializer {
	return &FeedMaterializer{
		feeds:         feeds,
		relationships: relationships,
		strategy:      strategy,
		logger:        logger,
	}
}

// Materialize fans a piece of content out to every audience timeline.
// Re-materializing after an edit refreshes existing items in place, so the
// operation is safe to repeat.
func (m *FeedMaterializer) Materialize(ctx context.Context, c *content.Content) error {
	if c.IsDeleted() {
		return m.Remove(ctx, c.ID())
	}

	audience, err := m.audienceOf(ctx, c.AuthorID())
	if err != nil {
		return err
	}

	view := feed.ViewOf(c)
	for _, viewerID := range audience {
		if err := m.materializeFor(ctx, viewerID, c, view); err != nil {
			// one broken timeline must not starve the rest of the fan-out
			m.logger.Error("failed to materialize feed item",
				zap.String("viewerId", viewerID),
				zap.String("contentId", c.ID()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (m *FeedMaterializer) materializeFor(ctx context.Context, viewerID string, c *content.Content, view feed.ContentView) error {
	groupKey := m.strategy.GroupKey(viewerID, c)

	existing, err := m.feeds.FindByGroup(ctx, viewerID, m.strategy.Name(), groupKey)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return err
	}
	if existing != nil {
		existing.Merge(view)
		return m.feeds.Save(ctx, existing)
	}

	item, err := feed.NewItem(viewerID, view, feed.Descriptor{
		Type:     m.strategy.Name(),
		GroupKey: groupKey,
		RefIDs:   []string{c.ID()},
	})
	if err != nil {
		return err
	}
	return m.feeds.Save(ctx, item)
}

// Remove drops every timeline item rendering the given content
func (m *FeedMaterializer) Remove(ctx context.Context, contentID string) error {
	return m.feeds.DeleteByContent(ctx, contentID)
}

// Timeline returns one page of a viewer's feed, newest first. An empty
// cursor starts at the top. Reading never mutates the items; seen and
// called flags move only through the explicit acknowledgment calls below.
func (m *FeedMaterializer) Timeline(ctx context.Context, viewerID, cursor string, limit int) ([]*feed.Item, string, error) {
	return m.feeds.FindTimeline(ctx, viewerID, cursor, limit)
}

// MarkSeen flips the seen flag on one of the viewer's items
func (m *FeedMaterializer) MarkSeen(ctx context.Context, viewerID, itemID string) error {
	item, err := m.feeds.FindByID(ctx, viewerID, itemID)
	if err != nil {
		return err
	}
	item.MarkSeen()
	return m.feeds.Save(ctx, item)
}

// MarkCalled records that the viewer opened the content behind an item
func (m *FeedMaterializer) MarkCalled(ctx context.Context, viewerID, itemID string) error {
	item, err := m.feeds.FindByID(ctx, viewerID, itemID)
	if err != nil {
		return err
	}
	item.MarkCalled()
	return m.feeds.Save(ctx, item)
}

func (m *FeedMaterializer) audienceOf(ctx context.Context, authorID string) ([]string, error) {
	followers, err := m.relationships.FollowersOf(ctx, authorID)
	if err != nil {
		return nil, err
	}
	audience := make([]string, 0, len(followers)+1)
	seen := map[string]bool{authorID: true}
	audience = append(audience, authorID)
	for _, f := range followers {
		if seen[f] {
			continue
		}
		seen[f] = true
		audience = append(audience, f)
	}
	return audience, nil
}
