package handlers

import (
	"context"
	"fmt"
	"testing"

	"castfeed-backend/application/queries"
	"castfeed-backend/application/services"
	"castfeed-backend/domain/content"
	"castfeed-backend/domain/feed"
	"castfeed-backend/infrastructure/media"
	"castfeed-backend/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFeedHandlerFixture(t *testing.T) (*GetFeedHandler, *services.FeedMaterializer) {
	t.Helper()
	feeds := memory.NewInMemoryFeedRepository()
	relationships := memory.NewInMemoryRelationshipRepository()
	materializer := services.NewFeedMaterializer(feeds, relationships, feed.NewCreateTimeStrategy(), zap.NewNop())
	return NewGetFeedHandler(materializer, media.NewPassthroughSigner(), zap.NewNop()), materializer
}

func seedTimeline(t *testing.T, materializer *services.FeedMaterializer, authorID string, posts int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < posts; i++ {
		c, err := content.New("", authorID, content.TypeShort, content.Payload{
			Message: fmt.Sprintf("post %d", i),
		})
		require.NoError(t, err)
		require.NoError(t, materializer.Materialize(ctx, c))
	}
}

func TestGetFeedHandler_DefaultsLimit(t *testing.T) {
	handler, materializer := newFeedHandlerFixture(t)
	seedTimeline(t, materializer, "author1", 30)

	result, err := handler.Handle(context.Background(), queries.GetFeedQuery{
		ViewerID: "author1",
	})

	require.NoError(t, err)
	assert.Len(t, result.Items, 25)
	assert.NotEmpty(t, result.NextCursor)
}

func TestGetFeedHandler_ClampsOversizedLimit(t *testing.T) {
	handler, materializer := newFeedHandlerFixture(t)
	seedTimeline(t, materializer, "author1", 120)

	result, err := handler.Handle(context.Background(), queries.GetFeedQuery{
		ViewerID: "author1",
		Limit:    1000000,
	})

	require.NoError(t, err)
	assert.Len(t, result.Items, 100)
	assert.NotEmpty(t, result.NextCursor)

	rest, err := handler.Handle(context.Background(), queries.GetFeedQuery{
		ViewerID: "author1",
		Cursor:   result.NextCursor,
		Limit:    1000000,
	})
	require.NoError(t, err)
	assert.Len(t, rest.Items, 20)
	assert.Empty(t, rest.NextCursor)
}
