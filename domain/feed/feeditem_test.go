package feed

import (
	"testing"

	"castfeed-backend/domain/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortView(t *testing.T, authorID, message string) ContentView {
	t.Helper()
	c, err := content.New("", authorID, content.TypeShort, content.Payload{Message: message})
	require.NoError(t, err)
	return ViewOf(c)
}

func TestNewItem(t *testing.T) {
	view := shortView(t, "author1", "hello")
	strategy := NewCreateTimeStrategy()

	item, err := NewItem("viewer1", view, Descriptor{
		Type:     strategy.Name(),
		GroupKey: view.ContentID,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, item.ID())
	assert.Equal(t, "viewer1", item.ViewerID())
	assert.False(t, item.Seen())
	assert.False(t, item.Called())
}

func TestNewItem_Validation(t *testing.T) {
	view := shortView(t, "author1", "hello")

	_, err := NewItem("", view, Descriptor{})
	assert.Error(t, err)

	_, err = NewItem("viewer1", ContentView{}, Descriptor{})
	assert.Error(t, err)
}

func TestMarkSeen_OneWay(t *testing.T) {
	view := shortView(t, "author1", "hello")
	item, err := NewItem("viewer1", view, Descriptor{GroupKey: view.ContentID})
	require.NoError(t, err)

	item.MarkSeen()
	assert.True(t, item.Seen())

	item.MarkSeen()
	assert.True(t, item.Seen())
}

func TestMarkCalled_ImpliesSeen(t *testing.T) {
	view := shortView(t, "author1", "hello")
	item, err := NewItem("viewer1", view, Descriptor{GroupKey: view.ContentID})
	require.NoError(t, err)

	item.MarkCalled()

	assert.True(t, item.Called())
	assert.True(t, item.Seen())
}

func TestMerge_ReplacesViewAndTracksRefs(t *testing.T) {
	view := shortView(t, "author1", "v1")
	item, err := NewItem("viewer1", view, Descriptor{
		GroupKey: view.ContentID,
		RefIDs:   []string{view.ContentID},
	})
	require.NoError(t, err)

	edited := view
	edited.Payload.Message = "v2"
	item.Merge(edited)

	assert.Equal(t, "v2", item.View().Payload.Message)
	assert.Equal(t, []string{view.ContentID}, item.Descriptor().RefIDs)
}

func TestCreateTimeStrategy_GroupsPerContent(t *testing.T) {
	strategy := NewCreateTimeStrategy()
	c1, err := content.New("", "author1", content.TypeShort, content.Payload{Message: "one"})
	require.NoError(t, err)
	c2, err := content.New("", "author1", content.TypeShort, content.Payload{Message: "two"})
	require.NoError(t, err)

	assert.Equal(t, AggregatorCreateTime, strategy.Name())
	assert.Equal(t, c1.ID(), strategy.GroupKey("viewer1", c1))
	assert.NotEqual(t, strategy.GroupKey("viewer1", c1), strategy.GroupKey("viewer1", c2))
}
