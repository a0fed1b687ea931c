package memory

import (
	"context"
	"fmt"
	"testing"

	"castfeed-backend/domain/content"
	"castfeed-backend/domain/feed"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedFeedItem(t *testing.T, repo *InMemoryFeedRepository, viewerID, contentID string) *feed.Item {
	t.Helper()
	c, err := content.New(contentID, "author1", content.TypeShort, content.Payload{Message: "post"})
	require.NoError(t, err)
	item, err := feed.NewItem(viewerID, feed.ViewOf(c), feed.Descriptor{
		Type:     feed.AggregatorCreateTime,
		GroupKey: c.ID(),
		RefIDs:   []string{c.ID()},
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), item))
	return item
}

func TestFeedRepository_TimelineCursor(t *testing.T) {
	repo := NewInMemoryFeedRepository()
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		seedFeedItem(t, repo, "viewer1", fmt.Sprintf("content-%d", i))
	}

	var collected []string
	cursor := ""
	pages := 0
	for {
		items, next, err := repo.FindTimeline(ctx, "viewer1", cursor, 3)
		require.NoError(t, err)
		for _, item := range items {
			collected = append(collected, item.ID())
		}
		pages++
		if next == "" {
			break
		}
		cursor = next
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, collected, 7)
	seen := map[string]bool{}
	for _, id := range collected {
		assert.False(t, seen[id], "item delivered twice")
		seen[id] = true
	}
}

func TestFeedRepository_TimelineIsolatesViewers(t *testing.T) {
	repo := NewInMemoryFeedRepository()
	ctx := context.Background()
	seedFeedItem(t, repo, "viewer1", "content-1")
	seedFeedItem(t, repo, "viewer2", "content-1")

	items, _, err := repo.FindTimeline(ctx, "viewer1", "", 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFeedRepository_FindByGroup(t *testing.T) {
	repo := NewInMemoryFeedRepository()
	ctx := context.Background()
	item := seedFeedItem(t, repo, "viewer1", "content-1")

	found, err := repo.FindByGroup(ctx, "viewer1", feed.AggregatorCreateTime, "content-1")
	require.NoError(t, err)
	assert.Equal(t, item.ID(), found.ID())

	_, err = repo.FindByGroup(ctx, "viewer1", feed.AggregatorCreateTime, "content-2")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestFeedRepository_DeleteByContent(t *testing.T) {
	repo := NewInMemoryFeedRepository()
	ctx := context.Background()
	seedFeedItem(t, repo, "viewer1", "content-1")
	seedFeedItem(t, repo, "viewer2", "content-1")
	keep := seedFeedItem(t, repo, "viewer1", "content-2")

	require.NoError(t, repo.DeleteByContent(ctx, "content-1"))

	items, _, err := repo.FindTimeline(ctx, "viewer1", "", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID(), items[0].ID())

	items, _, err = repo.FindTimeline(ctx, "viewer2", "", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFeedRepository_SaveIsDetached(t *testing.T) {
	repo := NewInMemoryFeedRepository()
	ctx := context.Background()
	item := seedFeedItem(t, repo, "viewer1", "content-1")

	item.MarkSeen()

	stored, err := repo.FindByID(ctx, "viewer1", item.ID())
	require.NoError(t, err)
	assert.False(t, stored.Seen())
}
