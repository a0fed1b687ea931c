package memory

import (
	"context"
	"testing"

	"castfeed-backend/domain/engagement"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngagementRepository_DuplicateKeyConflicts(t *testing.T) {
	repo := NewInMemoryEngagementRepository()
	ctx := context.Background()

	first, err := engagement.New("fan1", "content-1", engagement.KindLike)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := engagement.New("fan1", "content-1", engagement.KindLike)
	require.NoError(t, err)
	err = repo.Save(ctx, second)

	assert.True(t, pkgerrors.IsConflict(err))

	// a different kind against the same target goes through
	recast, err := engagement.NewWithRef("fan1", "content-1", engagement.KindRecast, "recast-1")
	require.NoError(t, err)
	assert.NoError(t, repo.Save(ctx, recast))
}

func TestEngagementRepository_QuotesKeyedPerRef(t *testing.T) {
	repo := NewInMemoryEngagementRepository()
	ctx := context.Background()

	first, err := engagement.NewWithRef("fan1", "content-1", engagement.KindQuote, "quote-1")
	require.NoError(t, err)
	second, err := engagement.NewWithRef("fan1", "content-1", engagement.KindQuote, "quote-2")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	assert.NoError(t, repo.Save(ctx, second))
}

func TestEngagementRepository_DeleteFreesKey(t *testing.T) {
	repo := NewInMemoryEngagementRepository()
	ctx := context.Background()

	record, err := engagement.New("fan1", "content-1", engagement.KindLike)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, record))

	require.NoError(t, repo.Delete(ctx, record.ID))
	_, err = repo.Find(ctx, "fan1", "content-1", engagement.KindLike)
	assert.True(t, pkgerrors.IsNotFound(err))

	// the key is free again
	again, err := engagement.New("fan1", "content-1", engagement.KindLike)
	require.NoError(t, err)
	assert.NoError(t, repo.Save(ctx, again))

	// deleting an absent record is quiet
	assert.NoError(t, repo.Delete(ctx, "ghost"))
}

func TestEngagementRepository_FindByRef(t *testing.T) {
	repo := NewInMemoryEngagementRepository()
	ctx := context.Background()

	record, err := engagement.NewWithRef("fan1", "content-1", engagement.KindRecast, "recast-1")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, record))

	found, err := repo.FindByRef(ctx, "content-1", "recast-1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)

	_, err = repo.FindByRef(ctx, "content-1", "recast-2")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestEngagementRepository_CountByTarget(t *testing.T) {
	repo := NewInMemoryEngagementRepository()
	ctx := context.Background()

	for _, userID := range []string{"fan1", "fan2", "fan3"} {
		record, err := engagement.New(userID, "content-1", engagement.KindLike)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, record))
	}
	other, err := engagement.New("fan1", "content-2", engagement.KindLike)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	count, err := repo.CountByTarget(ctx, "content-1", engagement.KindLike)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = repo.CountByTarget(ctx, "content-1", engagement.KindRecast)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
