package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"castfeed-backend/domain/comment"
	"castfeed-backend/domain/content"
	"castfeed-backend/domain/engagement"
	"castfeed-backend/infrastructure/persistence/memory"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledgerFixture struct {
	contents    *memory.InMemoryContentRepository
	comments    *memory.InMemoryCommentRepository
	engagements *memory.InMemoryEngagementRepository
	ledger      *EngagementLedger
}

func newLedgerFixture() *ledgerFixture {
	contents := memory.NewInMemoryContentRepository()
	comments := memory.NewInMemoryCommentRepository()
	engagements := memory.NewInMemoryEngagementRepository()
	return &ledgerFixture{
		contents:    contents,
		comments:    comments,
		engagements: engagements,
		ledger:      NewEngagementLedger(contents, comments, engagements, nil, zap.NewNop()),
	}
}

func (f *ledgerFixture) seedContent(t *testing.T, authorID, message string) *content.Content {
	t.Helper()
	c, err := content.New("", authorID, content.TypeShort, content.Payload{Message: message})
	require.NoError(t, err)
	require.NoError(t, f.contents.Save(context.Background(), c))
	return c
}

func TestLikeContent_Idempotent(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "likeable")

	_, err := f.ledger.LikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)
	result, err := f.ledger.LikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)

	assert.Equal(t, 1, result.EngagementCount(engagement.KindLike))

	stored, err := f.contents.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.EngagementCount(engagement.KindLike))
	assert.True(t, stored.EngagedBy(engagement.KindLike, "fan1"))
}

func TestLikeContent_ConcurrentLikesAllCount(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "viral")

	const likers = 64
	var wg sync.WaitGroup
	for i := 0; i < likers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.ledger.LikeContent(ctx, fmt.Sprintf("fan%02d", n), c.ID())
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := f.engagements.FindByTarget(ctx, c.ID())
	require.NoError(t, err)
	require.Len(t, records, likers)

	// the cached counter matches the authoritative record set even though
	// every like raced against the others
	stored, err := f.contents.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, likers, stored.EngagementCount(engagement.KindLike))
}

func TestLikeContent_ConcurrentWithUnlikeKeepsOtherCounters(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "busy thread")
	_, err := f.ledger.LikeContent(ctx, "early", c.ID())
	require.NoError(t, err)

	const fans = 16
	var wg sync.WaitGroup
	for i := 0; i < fans; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := f.ledger.LikeContent(ctx, fmt.Sprintf("fan%02d", n), c.ID())
			assert.NoError(t, err)
		}(i)
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, f.ledger.RecordComment(ctx, fmt.Sprintf("fan%02d", n), c.ID()))
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.ledger.UnlikeContent(ctx, "early", c.ID())
		assert.NoError(t, err)
	}()
	wg.Wait()

	stored, err := f.contents.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, fans, stored.EngagementCount(engagement.KindLike))
	assert.Equal(t, fans, stored.EngagementCount(engagement.KindComment))
	assert.False(t, stored.EngagedBy(engagement.KindLike, "early"))
}

func TestLikeContent_DeletedContent(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "gone soon")
	require.NoError(t, c.SoftDelete())
	require.NoError(t, f.contents.Save(ctx, c))

	_, err := f.ledger.LikeContent(ctx, "fan1", c.ID())

	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUnlikeContent_InverseOfLike(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "likeable")

	_, err := f.ledger.LikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)
	result, err := f.ledger.UnlikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)

	assert.Equal(t, 0, result.EngagementCount(engagement.KindLike))
	assert.False(t, result.EngagedBy(engagement.KindLike, "fan1"))

	// liking again works after the withdrawal
	result, err = f.ledger.LikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, result.EngagementCount(engagement.KindLike))
}

func TestUnlikeContent_NeverLikedIsNoop(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "unliked")

	result, err := f.ledger.UnlikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, result.EngagementCount(engagement.KindLike))

	// double unlike stays at zero
	result, err = f.ledger.UnlikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, result.EngagementCount(engagement.KindLike))
}

func TestUnlikeContent_WorksOnTombstone(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "liked then deleted")

	_, err := f.ledger.LikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)

	stored, err := f.contents.FindByID(ctx, c.ID())
	require.NoError(t, err)
	require.NoError(t, stored.SoftDelete())
	require.NoError(t, f.contents.Save(ctx, stored))

	result, err := f.ledger.UnlikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, result.EngagementCount(engagement.KindLike))
}

func TestLikeComment_Idempotent(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "post")
	cm, err := comment.New("", "author2", c.ID(), "nice")
	require.NoError(t, err)
	require.NoError(t, f.comments.Save(ctx, cm))

	_, err = f.ledger.LikeComment(ctx, "fan1", cm.ID())
	require.NoError(t, err)
	result, err := f.ledger.LikeComment(ctx, "fan1", cm.ID())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Likes().Count)

	result, err = f.ledger.UnlikeComment(ctx, "fan1", cm.ID())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Likes().Count)
}

func TestRecordComment_OccurrenceBased(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "post")

	require.NoError(t, f.ledger.RecordComment(ctx, "fan1", c.ID()))
	require.NoError(t, f.ledger.RecordComment(ctx, "fan1", c.ID()))

	stored, err := f.contents.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, stored.EngagementCount(engagement.KindComment))

	require.NoError(t, f.ledger.RetractComment(ctx, "fan1", c.ID()))
	stored, err = f.contents.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.EngagementCount(engagement.KindComment))
}

func TestReconcileContent_RepairsDrift(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "post")

	_, err := f.ledger.LikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)
	_, err = f.ledger.LikeContent(ctx, "fan2", c.ID())
	require.NoError(t, err)

	// corrupt the cached counter behind the ledger's back
	stored, err := f.contents.FindByID(ctx, c.ID())
	require.NoError(t, err)
	stored.ReplaceEngagements(map[engagement.Kind]engagement.Summary{
		engagement.KindLike: {Count: 40, Participants: []string{"fan1", "fan2"}},
	})
	require.NoError(t, f.contents.Save(ctx, stored))

	changed, err := f.ledger.ReconcileContent(ctx, c.ID())
	require.NoError(t, err)
	assert.True(t, changed)

	repaired, err := f.contents.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, repaired.EngagementCount(engagement.KindLike))
}

func TestReconcileContent_CountsLiveComments(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "post")

	cm, err := comment.New("", "fan1", c.ID(), "top")
	require.NoError(t, err)
	require.NoError(t, f.comments.Save(ctx, cm))

	changed, err := f.ledger.ReconcileContent(ctx, c.ID())
	require.NoError(t, err)
	assert.True(t, changed)

	stored, err := f.contents.FindByID(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, stored.EngagementCount(engagement.KindComment))
}

func TestReconcileContent_NoDriftIsQuiet(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	c := f.seedContent(t, "author1", "post")

	_, err := f.ledger.LikeContent(ctx, "fan1", c.ID())
	require.NoError(t, err)

	changed, err := f.ledger.ReconcileContent(ctx, c.ID())
	require.NoError(t, err)
	assert.False(t, changed)
}
