package handlers

import (
	"context"
	"testing"

	"castfeed-backend/application/queries"
	"castfeed-backend/domain/content"
	"castfeed-backend/infrastructure/media"
	"castfeed-backend/infrastructure/persistence/memory"
	"castfeed-backend/pkg/common"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedWithRevisions(t *testing.T, repo *memory.InMemoryContentRepository) *content.Content {
	t.Helper()
	ctx := context.Background()
	c, err := content.New("", "author1", content.TypeShort, content.Payload{Message: "v1"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))
	require.NoError(t, repo.SaveRevision(ctx, c.CurrentRevision()))
	require.NoError(t, c.UpdatePayload(content.Payload{Message: "v2"}))
	require.NoError(t, repo.Save(ctx, c))
	require.NoError(t, repo.SaveRevision(ctx, c.CurrentRevision()))
	return c
}

func TestRevisionsHandler_ListNewestFirst(t *testing.T) {
	repo := memory.NewInMemoryContentRepository()
	handler := NewRevisionsHandler(repo, zap.NewNop())
	c := seedWithRevisions(t, repo)

	result, err := handler.HandleList(context.Background(), queries.ListRevisionsQuery{
		UserID:    "author1",
		ContentID: c.ID(),
		Page:      common.DefaultPaginationParams(),
	})

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, 2, result.Items[0].Seq)
	assert.Equal(t, 1, result.Items[1].Seq)
	assert.Equal(t, 2, result.Pagination.Total)
}

func TestRevisionsHandler_AuthorOnly(t *testing.T) {
	repo := memory.NewInMemoryContentRepository()
	handler := NewRevisionsHandler(repo, zap.NewNop())
	c := seedWithRevisions(t, repo)

	_, err := handler.HandleList(context.Background(), queries.ListRevisionsQuery{
		UserID:    "snoop",
		ContentID: c.ID(),
		Page:      common.DefaultPaginationParams(),
	})
	assert.True(t, pkgerrors.IsForbidden(err))

	_, err = handler.HandleGet(context.Background(), queries.GetRevisionQuery{
		UserID:    "snoop",
		ContentID: c.ID(),
		Seq:       1,
	})
	assert.True(t, pkgerrors.IsForbidden(err))
}

func TestRevisionsHandler_GetBySeq(t *testing.T) {
	repo := memory.NewInMemoryContentRepository()
	handler := NewRevisionsHandler(repo, zap.NewNop())
	c := seedWithRevisions(t, repo)

	result, err := handler.HandleGet(context.Background(), queries.GetRevisionQuery{
		UserID:    "author1",
		ContentID: c.ID(),
		Seq:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, "v1", result.Payload.Message)

	_, err = handler.HandleGet(context.Background(), queries.GetRevisionQuery{
		UserID:    "author1",
		ContentID: c.ID(),
		Seq:       7,
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGetContentHandler_TombstoneView(t *testing.T) {
	repo := memory.NewInMemoryContentRepository()
	handler := NewGetContentHandler(repo, media.NewPassthroughSigner(), zap.NewNop())
	ctx := context.Background()
	c := seedWithRevisions(t, repo)
	require.NoError(t, c.SoftDelete())
	require.NoError(t, repo.Save(ctx, c))

	result, err := handler.Handle(ctx, queries.GetContentQuery{
		ViewerID:  "viewer1",
		ContentID: c.ID(),
	})

	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.Equal(t, content.Payload{}, result.Payload)
	assert.Empty(t, result.Hashtags)
	assert.Equal(t, 2, result.RevisionCount)
}

func TestGetContentHandler_ViewerEngagedFlag(t *testing.T) {
	repo := memory.NewInMemoryContentRepository()
	handler := NewGetContentHandler(repo, media.NewPassthroughSigner(), zap.NewNop())
	ctx := context.Background()
	c := seedWithRevisions(t, repo)
	c.ApplyEngagement("like", "fan1")
	require.NoError(t, repo.Save(ctx, c))

	result, err := handler.Handle(ctx, queries.GetContentQuery{ViewerID: "fan1", ContentID: c.ID()})
	require.NoError(t, err)
	assert.True(t, result.Engagements["like"].Engaged)
	assert.Equal(t, 1, result.Engagements["like"].Count)

	result, err = handler.Handle(ctx, queries.GetContentQuery{ViewerID: "fan2", ContentID: c.ID()})
	require.NoError(t, err)
	assert.False(t, result.Engagements["like"].Engaged)
}
