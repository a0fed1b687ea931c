// Package memory provides in-memory implementations of the persistence
// ports. They back the test suites and local development; production runs
// on the DynamoDB implementations.
package memory

import (
	"context"
	"sort"
	"sync"

	"castfeed-backend/domain/content"
	"castfeed-backend/domain/engagement"
	"castfeed-backend/pkg/common"
	pkgerrors "castfeed-backend/pkg/errors"
)

// InMemoryContentRepository provides an in-memory ContentRepository
type InMemoryContentRepository struct {
	mu        sync.RWMutex
	contents  map[string]*content.Content
	revisions map[string][]content.Revision
}

// NewInMemoryContentRepository creates a new in-memory content repository
func NewInMemoryContentRepository() *InMemoryContentRepository {
	return &InMemoryContentRepository{
		contents:  make(map[string]*content.Content),
		revisions: make(map[string][]content.Revision),
	}
}

// Save stores a detached copy of the aggregate
func (r *InMemoryContentRepository) Save(ctx context.Context, c *content.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contents[c.ID()] = cloneContent(c)
	return nil
}

// FindByID returns the content, including tombstones
func (r *InMemoryContentRepository) FindByID(ctx context.Context, id string) (*content.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.contents[id]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("content")
	}
	return cloneContent(c), nil
}

// FindByAuthor returns the author's live posts, paged and sorted
func (r *InMemoryContentRepository) FindByAuthor(ctx context.Context, authorID string, page common.PaginationParams) ([]*content.Content, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*content.Content
	for _, c := range r.contents {
		if c.AuthorID() == authorID && !c.IsDeleted() {
			matched = append(matched, c)
		}
	}

	sortContents(matched, page)
	total := len(matched)
	matched = slicePage(matched, page)

	out := make([]*content.Content, 0, len(matched))
	for _, c := range matched {
		out = append(out, cloneContent(c))
	}
	return out, total, nil
}

// ApplyEngagementDelta adjusts one cached counter on the stored aggregate
// while holding the write lock, mirroring the single atomic update the
// DynamoDB implementation issues. Deltas from concurrent reactions all land.
func (r *InMemoryContentRepository) ApplyEngagementDelta(ctx context.Context, contentID string, kind engagement.Kind, delta int, userID string, dropParticipant bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.contents[contentID]
	if !exists {
		return pkgerrors.NewNotFoundError("content")
	}
	switch {
	case delta > 0:
		c.ApplyEngagementOccurrence(kind, userID)
	case dropParticipant:
		c.RetractEngagement(kind, userID)
	default:
		c.RetractEngagementOccurrence(kind)
	}
	return nil
}

// FindDerived returns live recasts and quotes pointing at the original
func (r *InMemoryContentRepository) FindDerived(ctx context.Context, originalID string) ([]*content.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*content.Content
	for _, c := range r.contents {
		if c.IsDeleted() {
			continue
		}
		if ref := c.OriginalRef(); ref != nil && ref.ID == originalID {
			out = append(out, cloneContent(c))
		}
	}
	return out, nil
}

// FindRecastByAuthor returns the author's live recast of the original
func (r *InMemoryContentRepository) FindRecastByAuthor(ctx context.Context, authorID, originalID string) (*content.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.contents {
		if !c.IsRecast() || c.IsDeleted() || c.AuthorID() != authorID {
			continue
		}
		if ref := c.OriginalRef(); ref != nil && ref.ID == originalID {
			return cloneContent(c), nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("recast")
}

// SaveRevision appends a revision snapshot. Writing the same sequence
// twice overwrites in place, keeping retries idempotent.
func (r *InMemoryContentRepository) SaveRevision(ctx context.Context, rev content.Revision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	revs := r.revisions[rev.ContentID]
	for i, existing := range revs {
		if existing.Seq == rev.Seq {
			revs[i] = rev
			return nil
		}
	}
	r.revisions[rev.ContentID] = append(revs, rev)
	return nil
}

// FindRevisions returns the revision history, newest sequence first
func (r *InMemoryContentRepository) FindRevisions(ctx context.Context, contentID string, page common.PaginationParams) ([]content.Revision, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	revs := append([]content.Revision{}, r.revisions[contentID]...)
	sort.Slice(revs, func(i, j int) bool { return revs[i].Seq > revs[j].Seq })

	total := len(revs)
	offset := page.Offset()
	if offset >= len(revs) {
		return nil, total, nil
	}
	end := offset + page.Limit
	if end > len(revs) {
		end = len(revs)
	}
	return revs[offset:end], total, nil
}

// FindRevision returns one revision by sequence number
func (r *InMemoryContentRepository) FindRevision(ctx context.Context, contentID string, seq int) (*content.Revision, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rev := range r.revisions[contentID] {
		if rev.Seq == seq {
			out := rev
			return &out, nil
		}
	}
	return nil, pkgerrors.NewNotFoundError("revision")
}

func cloneContent(c *content.Content) *content.Content {
	return content.Reconstruct(
		c.ID(),
		c.AuthorID(),
		c.Type(),
		c.Payload(),
		append([]string{}, c.Hashtags()...),
		c.OriginalRef(),
		c.Engagements(),
		c.RevisionCount(),
		c.Visibility(),
		c.CreatedAt(),
		c.UpdatedAt(),
	)
}

func sortContents(items []*content.Content, page common.PaginationParams) {
	asc := page.Order == "asc"
	sort.Slice(items, func(i, j int) bool {
		var before bool
		if page.SortBy == "createdAt" {
			if items[i].CreatedAt().Equal(items[j].CreatedAt()) {
				before = items[i].ID() < items[j].ID()
			} else {
				before = items[i].CreatedAt().Before(items[j].CreatedAt())
			}
		} else {
			if items[i].UpdatedAt().Equal(items[j].UpdatedAt()) {
				before = items[i].ID() < items[j].ID()
			} else {
				before = items[i].UpdatedAt().Before(items[j].UpdatedAt())
			}
		}
		if asc {
			return before
		}
		return !before
	})
}

func slicePage(items []*content.Content, page common.PaginationParams) []*content.Content {
	offset := page.Offset()
	if offset >= len(items) {
		return nil
	}
	end := offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
