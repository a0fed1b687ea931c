package comment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c, err := New("", "author1", "content-1", "first!")

	require.NoError(t, err)
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, "content-1", c.ContentID())
	assert.Empty(t, c.ParentID())
	assert.False(t, c.IsReply())
	assert.Equal(t, 0, c.ReplyCount())
	assert.Len(t, c.GetUncommittedEvents(), 1)
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "author1", "content-1", "")
	assert.Error(t, err)

	_, err = New("", "author1", "content-1", strings.Repeat("x", 2001))
	assert.Error(t, err)

	_, err = New("", "", "content-1", "hello")
	assert.Error(t, err)
}

func TestNewReply(t *testing.T) {
	parent, err := New("", "author1", "content-1", "top level")
	require.NoError(t, err)

	reply, err := NewReply("", "author2", parent, "me too")

	require.NoError(t, err)
	assert.True(t, reply.IsReply())
	assert.Equal(t, parent.ID(), reply.ParentID())
	assert.Equal(t, parent.ContentID(), reply.ContentID())
}

func TestNewReply_RejectsReplyToReply(t *testing.T) {
	parent, err := New("", "author1", "content-1", "top level")
	require.NoError(t, err)
	reply, err := NewReply("", "author2", parent, "me too")
	require.NoError(t, err)

	_, err = NewReply("", "author3", reply, "three deep")

	assert.Error(t, err)
}

func TestNewReply_RejectsDeletedParent(t *testing.T) {
	parent, err := New("", "author1", "content-1", "top level")
	require.NoError(t, err)
	require.NoError(t, parent.Tombstone())

	_, err = NewReply("", "author2", parent, "too late")

	assert.Error(t, err)
}

func TestUpdateMessage(t *testing.T) {
	c, err := New("", "author1", "content-1", "tyop")
	require.NoError(t, err)

	require.NoError(t, c.UpdateMessage("typo"))
	assert.Equal(t, "typo", c.Message())

	assert.Error(t, c.UpdateMessage(""))
}

func TestTombstone(t *testing.T) {
	c, err := New("", "author1", "content-1", "regret")
	require.NoError(t, err)

	require.NoError(t, c.Tombstone())

	assert.True(t, c.IsDeleted())
	assert.Empty(t, c.Message())
	assert.Error(t, c.Tombstone())
	assert.Error(t, c.UpdateMessage("resurrect"))
}

func TestLikes(t *testing.T) {
	c, err := New("", "author1", "content-1", "likeable")
	require.NoError(t, err)

	c.ApplyLike("fan1")
	c.ApplyLike("fan1")
	assert.Equal(t, 1, c.Likes().Count)

	c.RetractLike("fan1")
	c.RetractLike("fan1")
	assert.Equal(t, 0, c.Likes().Count)
}

func TestReplyCount(t *testing.T) {
	c, err := New("", "author1", "content-1", "parent")
	require.NoError(t, err)

	c.IncrementReplies()
	c.IncrementReplies()
	assert.Equal(t, 2, c.ReplyCount())

	c.DecrementReplies()
	c.DecrementReplies()
	c.DecrementReplies()
	assert.Equal(t, 0, c.ReplyCount())
}
