package memory

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRelationshipRepository provides an in-memory follow graph
type InMemoryRelationshipRepository struct {
	mu        sync.RWMutex
	followers map[string]map[string]bool
	following map[string]map[string]bool
}

// NewInMemoryRelationshipRepository creates a new in-memory relationship repository
func NewInMemoryRelationshipRepository() *InMemoryRelationshipRepository {
	return &InMemoryRelationshipRepository{
		followers: make(map[string]map[string]bool),
		following: make(map[string]map[string]bool),
	}
}

// Follow adds a follow edge. Following twice is a no-op.
func (r *InMemoryRelationshipRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.followers[followeeID] == nil {
		r.followers[followeeID] = make(map[string]bool)
	}
	if r.following[followerID] == nil {
		r.following[followerID] = make(map[string]bool)
	}
	r.followers[followeeID][followerID] = true
	r.following[followerID][followeeID] = true
	return nil
}

// Unfollow removes a follow edge. Removing an absent edge is a no-op.
func (r *InMemoryRelationshipRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.followers[followeeID], followerID)
	delete(r.following[followerID], followeeID)
	return nil
}

// FollowersOf returns the ids following the given user, sorted for
// deterministic fan-out.
func (r *InMemoryRelationshipRepository) FollowersOf(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.followers[userID]), nil
}

// FollowingOf returns the ids the given user follows
func (r *InMemoryRelationshipRepository) FollowingOf(ctx context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.following[userID]), nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
