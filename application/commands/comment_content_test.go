package commands

import (
	"context"
	"testing"

	"castfeed-backend/application/services"
	"castfeed-backend/domain/content"
	"castfeed-backend/domain/engagement"
	"castfeed-backend/infrastructure/persistence/memory"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type commentFixture struct {
	contents *memory.InMemoryContentRepository
	comments *memory.InMemoryCommentRepository
	handler  *CommentContentHandler
}

func newCommentFixture() *commentFixture {
	contents := memory.NewInMemoryContentRepository()
	comments := memory.NewInMemoryCommentRepository()
	engagements := memory.NewInMemoryEngagementRepository()
	logger := zap.NewNop()
	ledger := services.NewEngagementLedger(contents, comments, engagements, nil, logger)
	return &commentFixture{
		contents: contents,
		comments: comments,
		handler:  NewCommentContentHandler(comments, contents, ledger, nil, logger),
	}
}

func (f *commentFixture) seedContent(t *testing.T, authorID, message string) *content.Content {
	t.Helper()
	c, err := content.New("", authorID, content.TypeShort, content.Payload{Message: message})
	require.NoError(t, err)
	require.NoError(t, f.contents.Save(context.Background(), c))
	return c
}

func (f *commentFixture) commentCount(t *testing.T, contentID string) int {
	t.Helper()
	c, err := f.contents.FindByID(context.Background(), contentID)
	require.NoError(t, err)
	return c.EngagementCount(engagement.KindComment)
}

func TestHandleCreate_BumpsContentCounter(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	post := f.seedContent(t, "author1", "post")

	cm, err := f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "first!",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, cm.ID())
	assert.Equal(t, 1, f.commentCount(t, post.ID()))

	// the same user commenting again counts again
	_, err = f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "second!",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.commentCount(t, post.ID()))
}

func TestHandleCreate_DeletedContent(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	post := f.seedContent(t, "author1", "post")
	require.NoError(t, post.SoftDelete())
	require.NoError(t, f.contents.Save(ctx, post))

	_, err := f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "too late",
	})

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestHandleReply_CountsTowardPostAndParent(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	post := f.seedContent(t, "author1", "post")
	parent, err := f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "top",
	})
	require.NoError(t, err)

	reply, err := f.handler.HandleReply(ctx, ReplyCommentCommand{
		AuthorID: "fan2",
		ParentID: parent.ID(),
		Message:  "me too",
	})

	require.NoError(t, err)
	assert.Equal(t, post.ID(), reply.ContentID())
	assert.Equal(t, 2, f.commentCount(t, post.ID()))

	stored, err := f.comments.FindByID(ctx, parent.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ReplyCount())
}

func TestHandleReply_RejectsReplyToReply(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	post := f.seedContent(t, "author1", "post")
	parent, err := f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "top",
	})
	require.NoError(t, err)
	reply, err := f.handler.HandleReply(ctx, ReplyCommentCommand{
		AuthorID: "fan2",
		ParentID: parent.ID(),
		Message:  "me too",
	})
	require.NoError(t, err)

	_, err = f.handler.HandleReply(ctx, ReplyCommentCommand{
		AuthorID: "fan3",
		ParentID: reply.ID(),
		Message:  "three deep",
	})

	assert.Error(t, err)
	assert.Equal(t, 2, f.commentCount(t, post.ID()))
}

func TestHandleUpdate_OwnerOnly(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	post := f.seedContent(t, "author1", "post")
	cm, err := f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "tyop",
	})
	require.NoError(t, err)

	_, err = f.handler.HandleUpdate(ctx, UpdateCommentCommand{
		CommentID: cm.ID(),
		UserID:    "intruder",
		Message:   "hijack",
	})
	assert.True(t, pkgerrors.IsForbidden(err))

	updated, err := f.handler.HandleUpdate(ctx, UpdateCommentCommand{
		CommentID: cm.ID(),
		UserID:    "fan1",
		Message:   "typo",
	})
	require.NoError(t, err)
	assert.Equal(t, "typo", updated.Message())
}

func TestHandleDelete_LeafIsRemoved(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	post := f.seedContent(t, "author1", "post")
	cm, err := f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "regret",
	})
	require.NoError(t, err)

	require.NoError(t, f.handler.HandleDelete(ctx, DeleteCommentCommand{
		CommentID: cm.ID(),
		UserID:    "fan1",
	}))

	_, err = f.comments.FindByID(ctx, cm.ID())
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Equal(t, 0, f.commentCount(t, post.ID()))
}

func TestHandleDelete_WithRepliesTombstones(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	post := f.seedContent(t, "author1", "post")
	parent, err := f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "top",
	})
	require.NoError(t, err)
	_, err = f.handler.HandleReply(ctx, ReplyCommentCommand{
		AuthorID: "fan2",
		ParentID: parent.ID(),
		Message:  "me too",
	})
	require.NoError(t, err)

	require.NoError(t, f.handler.HandleDelete(ctx, DeleteCommentCommand{
		CommentID: parent.ID(),
		UserID:    "fan1",
	}))

	stored, err := f.comments.FindByID(ctx, parent.ID())
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted())
	assert.Empty(t, stored.Message())
	assert.Equal(t, 1, stored.ReplyCount())
	assert.Equal(t, 1, f.commentCount(t, post.ID()))

	// deleting again reads as gone
	err = f.handler.HandleDelete(ctx, DeleteCommentCommand{
		CommentID: parent.ID(),
		UserID:    "fan1",
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestHandleDelete_ReplyDecrementsParent(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	post := f.seedContent(t, "author1", "post")
	parent, err := f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "top",
	})
	require.NoError(t, err)
	reply, err := f.handler.HandleReply(ctx, ReplyCommentCommand{
		AuthorID: "fan2",
		ParentID: parent.ID(),
		Message:  "me too",
	})
	require.NoError(t, err)

	require.NoError(t, f.handler.HandleDelete(ctx, DeleteCommentCommand{
		CommentID: reply.ID(),
		UserID:    "fan2",
	}))

	stored, err := f.comments.FindByID(ctx, parent.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, stored.ReplyCount())
	assert.Equal(t, 1, f.commentCount(t, post.ID()))
}

func TestHandleDelete_NonOwnerForbidden(t *testing.T) {
	f := newCommentFixture()
	ctx := context.Background()
	post := f.seedContent(t, "author1", "post")
	cm, err := f.handler.HandleCreate(ctx, CreateCommentCommand{
		AuthorID:  "fan1",
		ContentID: post.ID(),
		Message:   "mine",
	})
	require.NoError(t, err)

	err = f.handler.HandleDelete(ctx, DeleteCommentCommand{
		CommentID: cm.ID(),
		UserID:    "intruder",
	})

	assert.True(t, pkgerrors.IsForbidden(err))
	assert.Equal(t, 1, f.commentCount(t, post.ID()))
}
