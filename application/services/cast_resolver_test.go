package services

import (
	"context"
	"testing"

	"castfeed-backend/domain/content"
	"castfeed-backend/domain/engagement"
	"castfeed-backend/infrastructure/persistence/memory"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type resolverFixture struct {
	contents    *memory.InMemoryContentRepository
	engagements *memory.InMemoryEngagementRepository
	resolver    *CastResolver
}

func newResolverFixture() *resolverFixture {
	contents := memory.NewInMemoryContentRepository()
	engagements := memory.NewInMemoryEngagementRepository()
	return &resolverFixture{
		contents:    contents,
		engagements: engagements,
		resolver:    NewCastResolver(contents, engagements, nil, zap.NewNop()),
	}
}

func (f *resolverFixture) seedContent(t *testing.T, authorID, message string) *content.Content {
	t.Helper()
	c, err := content.New("", authorID, content.TypeShort, content.Payload{Message: message})
	require.NoError(t, err)
	require.NoError(t, f.contents.Save(context.Background(), c))
	require.NoError(t, f.contents.SaveRevision(context.Background(), c.CurrentRevision()))
	return c
}

func TestRecast_AttachesToTarget(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "original")

	recast, err := f.resolver.Recast(ctx, "", "fan1", root.ID())

	require.NoError(t, err)
	assert.True(t, recast.IsRecast())
	assert.Equal(t, root.ID(), recast.OriginalRef().ID)

	target, err := f.contents.FindByID(ctx, root.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, target.EngagementCount(engagement.KindRecast))
}

func TestRecast_DuplicateConflicts(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "original")

	_, err := f.resolver.Recast(ctx, "", "fan1", root.ID())
	require.NoError(t, err)

	_, err = f.resolver.Recast(ctx, "", "fan1", root.ID())

	assert.True(t, pkgerrors.IsConflict(err))

	target, err := f.contents.FindByID(ctx, root.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, target.EngagementCount(engagement.KindRecast))
}

func TestRecast_OfRecastCollapsesToRoot(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "original")

	first, err := f.resolver.Recast(ctx, "", "fan1", root.ID())
	require.NoError(t, err)

	second, err := f.resolver.Recast(ctx, "", "fan2", first.ID())

	require.NoError(t, err)
	assert.Equal(t, root.ID(), second.OriginalRef().ID)

	target, err := f.contents.FindByID(ctx, root.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, target.EngagementCount(engagement.KindRecast))
}

func TestQuote_OfRecastCollapsesToRoot(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "original")

	recast, err := f.resolver.Recast(ctx, "", "fan1", root.ID())
	require.NoError(t, err)

	quote, err := f.resolver.Quote(ctx, "", "fan2", recast.ID(), content.Payload{Message: "take a look"})

	require.NoError(t, err)
	assert.Equal(t, root.ID(), quote.OriginalRef().ID)

	target, err := f.contents.FindByID(ctx, root.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, target.EngagementCount(engagement.KindQuote))
}

func TestQuote_OfQuoteTargetsTheQuote(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "original")

	first, err := f.resolver.Quote(ctx, "", "fan1", root.ID(), content.Payload{Message: "hot take"})
	require.NoError(t, err)

	second, err := f.resolver.Quote(ctx, "", "fan2", first.ID(), content.Payload{Message: "hotter take"})

	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.OriginalRef().ID)

	firstStored, err := f.contents.FindByID(ctx, first.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, firstStored.EngagementCount(engagement.KindQuote))

	rootStored, err := f.contents.FindByID(ctx, root.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, rootStored.EngagementCount(engagement.KindQuote))
}

func TestQuote_SameUserMayRepeat(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "original")

	_, err := f.resolver.Quote(ctx, "", "fan1", root.ID(), content.Payload{Message: "first"})
	require.NoError(t, err)
	_, err = f.resolver.Quote(ctx, "", "fan1", root.ID(), content.Payload{Message: "second"})
	require.NoError(t, err)

	target, err := f.contents.FindByID(ctx, root.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, target.EngagementCount(engagement.KindQuote))
}

func TestRecast_DeletedSource(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "original")
	require.NoError(t, f.resolver.Delete(ctx, "author1", root.ID()))

	_, err := f.resolver.Recast(ctx, "", "fan1", root.ID())

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDelete_NonOwnerForbidden(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "original")

	err := f.resolver.Delete(ctx, "intruder", root.ID())

	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestDelete_RecastSettlesOriginalCounter(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "original")
	recast, err := f.resolver.Recast(ctx, "", "fan1", root.ID())
	require.NoError(t, err)

	require.NoError(t, f.resolver.Delete(ctx, "fan1", recast.ID()))

	target, err := f.contents.FindByID(ctx, root.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, target.EngagementCount(engagement.KindRecast))

	// the user can recast again once the old one is gone
	_, err = f.resolver.Recast(ctx, "", "fan1", root.ID())
	require.NoError(t, err)
}

func TestDelete_TombstonesDerivedSnapshots(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	root := f.seedContent(t, "author1", "secret")
	quote, err := f.resolver.Quote(ctx, "", "fan1", root.ID(), content.Payload{Message: "look"})
	require.NoError(t, err)

	require.NoError(t, f.resolver.Delete(ctx, "author1", root.ID()))

	stored, err := f.contents.FindByID(ctx, quote.ID())
	require.NoError(t, err)
	ref := stored.OriginalRef()
	require.NotNil(t, ref)
	assert.True(t, ref.Tombstoned)
	assert.Equal(t, content.Payload{}, ref.Payload)

	deleted, err := f.contents.FindByID(ctx, root.ID())
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())
	assert.Error(t, f.resolver.Delete(ctx, "author1", root.ID()))
}

func TestDelete_KeepsRevisions(t *testing.T) {
	f := newResolverFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "v1")
	require.NoError(t, c.UpdatePayload(content.Payload{Message: "v2"}))
	require.NoError(t, f.contents.Save(ctx, c))
	require.NoError(t, f.contents.SaveRevision(ctx, c.CurrentRevision()))

	require.NoError(t, f.resolver.Delete(ctx, "author1", c.ID()))

	rev, err := f.contents.FindRevision(ctx, c.ID(), 2)
	require.NoError(t, err)
	assert.Equal(t, "v2", rev.Payload.Message)
}
