package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"castfeed-backend/domain/content"
	"castfeed-backend/domain/engagement"
	"castfeed-backend/pkg/common"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedShort(t *testing.T, repo *InMemoryContentRepository, id, authorID, message string) *content.Content {
	t.Helper()
	c, err := content.New(id, authorID, content.TypeShort, content.Payload{Message: message})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), c))
	return c
}

func TestContentRepository_SaveIsDetached(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	c := seedShort(t, repo, "", "author1", "v1")

	// mutating the caller's copy must not leak into the store
	require.NoError(t, c.UpdatePayload(content.Payload{Message: "v2"}))

	stored, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, "v1", stored.Payload().Message)
}

func TestContentRepository_EngagementDelta_ConcurrentIncrements(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	c := seedShort(t, repo, "", "author1", "hot take")

	const writers = 100
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := repo.ApplyEngagementDelta(ctx, c.ID(), engagement.KindLike, 1, fmt.Sprintf("user-%03d", n), false)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, writers, stored.EngagementCount(engagement.KindLike))
	assert.Len(t, stored.Engagements()[engagement.KindLike].Participants, writers)
}

func TestContentRepository_EngagementDelta_FloorsAtZero(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	c := seedShort(t, repo, "", "author1", "calm post")

	require.NoError(t, repo.ApplyEngagementDelta(ctx, c.ID(), engagement.KindLike, 1, "fan1", false))
	require.NoError(t, repo.ApplyEngagementDelta(ctx, c.ID(), engagement.KindLike, -1, "fan1", true))
	require.NoError(t, repo.ApplyEngagementDelta(ctx, c.ID(), engagement.KindLike, -1, "fan1", true))

	stored, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, stored.EngagementCount(engagement.KindLike))
	assert.False(t, stored.EngagedBy(engagement.KindLike, "fan1"))
}

func TestContentRepository_EngagementDelta_LeavesOtherKindsAlone(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	c := seedShort(t, repo, "", "author1", "quoted a lot")
	require.NoError(t, repo.ApplyEngagementDelta(ctx, c.ID(), engagement.KindQuote, 1, "fan1", false))

	require.NoError(t, repo.ApplyEngagementDelta(ctx, c.ID(), engagement.KindLike, 1, "fan2", false))

	stored, err := repo.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.EngagementCount(engagement.KindQuote))
	assert.Equal(t, 1, stored.EngagementCount(engagement.KindLike))

	err = repo.ApplyEngagementDelta(ctx, "missing", engagement.KindLike, 1, "fan2", false)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestContentRepository_FindByAuthor_Paging(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		seedShort(t, repo, fmt.Sprintf("content-%d", i), "author1", "post")
	}
	seedShort(t, repo, "other", "author2", "post")

	page := common.PaginationParams{Page: 1, Limit: 3, SortBy: "createdAt", Order: "asc"}
	first, total, err := repo.FindByAuthor(ctx, "author1", page)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, first, 3)

	page.Page = 2
	second, _, err := repo.FindByAuthor(ctx, "author1", page)
	require.NoError(t, err)
	require.Len(t, second, 2)

	// identical timestamps fall back to id order, so pages never overlap
	seen := map[string]bool{}
	for _, c := range append(first, second...) {
		assert.False(t, seen[c.ID()])
		seen[c.ID()] = true
	}
}

func TestContentRepository_FindByAuthor_SkipsTombstones(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	live := seedShort(t, repo, "", "author1", "live")
	dead := seedShort(t, repo, "", "author1", "dead")
	require.NoError(t, dead.SoftDelete())
	require.NoError(t, repo.Save(ctx, dead))

	results, total, err := repo.FindByAuthor(ctx, "author1", common.DefaultPaginationParams())

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, results, 1)
	assert.Equal(t, live.ID(), results[0].ID())

	// the tombstone itself is still loadable by id
	stored, err := repo.FindByID(ctx, dead.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted())
}

func TestContentRepository_FindRecastByAuthor(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	original := seedShort(t, repo, "", "author1", "source")

	recast, err := content.NewRecast("", "fan1", original.Snapshot())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, recast))

	found, err := repo.FindRecastByAuthor(ctx, "fan1", original.ID())
	require.NoError(t, err)
	assert.Equal(t, recast.ID(), found.ID())

	_, err = repo.FindRecastByAuthor(ctx, "fan2", original.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestContentRepository_FindDerived(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	original := seedShort(t, repo, "", "author1", "source")

	recast, err := content.NewRecast("", "fan1", original.Snapshot())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, recast))
	quote, err := content.NewQuote("", "fan2", content.Payload{Message: "look"}, original.Snapshot())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, quote))

	derived, err := repo.FindDerived(ctx, original.ID())
	require.NoError(t, err)
	assert.Len(t, derived, 2)
}

func TestContentRepository_Revisions(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	c := seedShort(t, repo, "", "author1", "v1")
	require.NoError(t, repo.SaveRevision(ctx, c.CurrentRevision()))
	require.NoError(t, c.UpdatePayload(content.Payload{Message: "v2"}))
	require.NoError(t, repo.SaveRevision(ctx, c.CurrentRevision()))

	revs, total, err := repo.FindRevisions(ctx, c.ID(), common.DefaultPaginationParams())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, revs, 2)
	assert.Equal(t, 2, revs[0].Seq)
	assert.Equal(t, 1, revs[1].Seq)

	rev, err := repo.FindRevision(ctx, c.ID(), 1)
	require.NoError(t, err)
	assert.Equal(t, "v1", rev.Payload.Message)

	_, err = repo.FindRevision(ctx, c.ID(), 9)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestContentRepository_SaveRevisionOverwritesSameSeq(t *testing.T) {
	repo := NewInMemoryContentRepository()
	ctx := context.Background()
	c := seedShort(t, repo, "", "author1", "v1")

	rev := c.CurrentRevision()
	require.NoError(t, repo.SaveRevision(ctx, rev))
	rev.Payload.Message = "v1 retried"
	require.NoError(t, repo.SaveRevision(ctx, rev))

	_, total, err := repo.FindRevisions(ctx, c.ID(), common.DefaultPaginationParams())
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	stored, err := repo.FindRevision(ctx, c.ID(), rev.Seq)
	require.NoError(t, err)
	assert.Equal(t, "v1 retried", stored.Payload.Message)
}
