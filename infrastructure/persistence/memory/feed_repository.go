package memory

import (
	"context"
	"sort"
	"sync"

	"castfeed-backend/domain/feed"
	pkgerrors "castfeed-backend/pkg/errors"
)

// InMemoryFeedRepository provides an in-memory FeedRepository. Timeline
// pages are ordered newest first with the item id as tie-break, and the
// cursor is the id of the last delivered item, so paging stays
// deterministic under concurrent writes.
type InMemoryFeedRepository struct {
	mu      sync.RWMutex
	items   map[string]map[string]*feed.Item
	byGroup map[string]string
}

// NewInMemoryFeedRepository creates a new in-memory feed repository
func NewInMemoryFeedRepository() *InMemoryFeedRepository {
	return &InMemoryFeedRepository{
		items:   make(map[string]map[string]*feed.Item),
		byGroup: make(map[string]string),
	}
}

// Save stores a detached copy of the item
func (r *InMemoryFeedRepository) Save(ctx context.Context, item *feed.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	viewer := r.items[item.ViewerID()]
	if viewer == nil {
		viewer = make(map[string]*feed.Item)
		r.items[item.ViewerID()] = viewer
	}
	viewer[item.ID()] = cloneItem(item)

	d := item.Descriptor()
	r.byGroup[groupKey(item.ViewerID(), d.Type, d.GroupKey)] = item.ID()
	return nil
}

// FindByID returns one of the viewer's items
func (r *InMemoryFeedRepository) FindByID(ctx context.Context, viewerID, itemID string) (*feed.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.items[viewerID][itemID]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("feed item")
	}
	return cloneItem(item), nil
}

// FindByGroup returns the viewer's item for an aggregator group
func (r *InMemoryFeedRepository) FindByGroup(ctx context.Context, viewerID, aggregatorType, key string) (*feed.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemID, exists := r.byGroup[groupKey(viewerID, aggregatorType, key)]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("feed item")
	}
	item, exists := r.items[viewerID][itemID]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("feed item")
	}
	return cloneItem(item), nil
}

// FindTimeline pages the viewer's items newest first
func (r *InMemoryFeedRepository) FindTimeline(ctx context.Context, viewerID, cursor string, limit int) ([]*feed.Item, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*feed.Item, 0, len(r.items[viewerID]))
	for _, item := range r.items[viewerID] {
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt().Equal(all[j].CreatedAt()) {
			return all[i].ID() > all[j].ID()
		}
		return all[i].CreatedAt().After(all[j].CreatedAt())
	})

	start := 0
	if cursor != "" {
		for i, item := range all {
			if item.ID() == cursor {
				start = i + 1
				break
			}
		}
	}
	if start >= len(all) {
		return nil, "", nil
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	out := make([]*feed.Item, 0, end-start)
	for _, item := range all[start:end] {
		out = append(out, cloneItem(item))
	}

	next := ""
	if end < len(all) {
		next = all[end-1].ID()
	}
	return out, next, nil
}

// DeleteByContent removes every item rendering the given content, across
// all viewers.
func (r *InMemoryFeedRepository) DeleteByContent(ctx context.Context, contentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for viewerID, viewer := range r.items {
		for itemID, item := range viewer {
			if !itemRefersTo(item, contentID) {
				continue
			}
			d := item.Descriptor()
			delete(r.byGroup, groupKey(viewerID, d.Type, d.GroupKey))
			delete(viewer, itemID)
		}
	}
	return nil
}

func itemRefersTo(item *feed.Item, contentID string) bool {
	if item.View().ContentID == contentID {
		return true
	}
	for _, ref := range item.Descriptor().RefIDs {
		if ref == contentID {
			return true
		}
	}
	return false
}

func groupKey(viewerID, aggregatorType, key string) string {
	return viewerID + "#" + aggregatorType + "#" + key
}

func cloneItem(item *feed.Item) *feed.Item {
	d := item.Descriptor()
	d.RefIDs = append([]string{}, d.RefIDs...)
	return feed.ReconstructItem(
		item.ID(),
		item.ViewerID(),
		item.View(),
		d,
		item.Seen(),
		item.Called(),
		item.CreatedAt(),
		item.UpdatedAt(),
	)
}
