package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationshipRepository_FollowBothDirections(t *testing.T) {
	repo := NewInMemoryRelationshipRepository()
	ctx := context.Background()

	require.NoError(t, repo.Follow(ctx, "fan1", "author1"))
	require.NoError(t, repo.Follow(ctx, "fan1", "author1"))
	require.NoError(t, repo.Follow(ctx, "fan2", "author1"))

	followers, err := repo.FollowersOf(ctx, "author1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fan1", "fan2"}, followers)

	following, err := repo.FollowingOf(ctx, "fan1")
	require.NoError(t, err)
	assert.Equal(t, []string{"author1"}, following)
}

func TestRelationshipRepository_Unfollow(t *testing.T) {
	repo := NewInMemoryRelationshipRepository()
	ctx := context.Background()
	require.NoError(t, repo.Follow(ctx, "fan1", "author1"))

	require.NoError(t, repo.Unfollow(ctx, "fan1", "author1"))
	require.NoError(t, repo.Unfollow(ctx, "fan1", "author1"))

	followers, err := repo.FollowersOf(ctx, "author1")
	require.NoError(t, err)
	assert.Empty(t, followers)

	following, err := repo.FollowingOf(ctx, "fan1")
	require.NoError(t, err)
	assert.Empty(t, following)
}
