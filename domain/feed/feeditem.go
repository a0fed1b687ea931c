package feed

import (
	"time"

	"castfeed-backend/domain/content"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/google/uuid"
)

// ContentView is the denormalized slice of a content record a feed item
// carries, enough to render a timeline entry without a second read.
type ContentView struct {
	ContentID   string               `json:"content_id"`
	AuthorID    string               `json:"author_id"`
	Type        content.Type         `json:"type"`
	Payload     content.Payload      `json:"payload"`
	OriginalRef *content.OriginalRef `json:"original_ref,omitempty"`
	PublishedAt time.Time            `json:"published_at"`
}

// ViewOf builds the timeline view of a piece of content
func ViewOf(c *content.Content) ContentView {
	return ContentView{
		ContentID:   c.ID(),
		AuthorID:    c.AuthorID(),
		Type:        c.Type(),
		Payload:     c.Payload(),
		OriginalRef: c.OriginalRef(),
		PublishedAt: c.CreatedAt(),
	}
}

// Item is one entry in a viewer's materialized timeline. Seen flips when
// the item is returned in a feed page; Called flips when the viewer opens
// the content itself. Both are one-way.
type Item struct {
	id         string
	viewerID   string
	view       ContentView
	descriptor Descriptor
	seen       bool
	called     bool
	createdAt  time.Time
	updatedAt  time.Time
}

// NewItem materializes a feed item for a viewer
func NewItem(viewerID string, view ContentView, descriptor Descriptor) (*Item, error) {
	if viewerID == "" {
		return nil, pkgerrors.NewValidationError("viewerID cannot be empty")
	}
	if view.ContentID == "" {
		return nil, pkgerrors.NewValidationError("contentID cannot be empty")
	}

	now := time.Now()
	return &Item{
		id:         uuid.New().String(),
		viewerID:   viewerID,
		view:       view,
		descriptor: descriptor,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructItem rebuilds an Item from persisted state
func ReconstructItem(
	id, viewerID string,
	view ContentView,
	descriptor Descriptor,
	seen, called bool,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:         id,
		viewerID:   viewerID,
		view:       view,
		descriptor: descriptor,
		seen:       seen,
		called:     called,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the feed item identifier
func (i *Item) ID() string { return i.id }

// ViewerID returns the timeline owner
func (i *Item) ViewerID() string { return i.viewerID }

// View returns the denormalized content view
func (i *Item) View() ContentView { return i.view }

// Descriptor returns the aggregator descriptor
func (i *Item) Descriptor() Descriptor { return i.descriptor }

// Seen reports whether the item was ever delivered in a feed page
func (i *Item) Seen() bool { return i.seen }

// Called reports whether the viewer opened the underlying content
func (i *Item) Called() bool { return i.called }

// CreatedAt returns the materialization time
func (i *Item) CreatedAt() time.Time { return i.createdAt }

// UpdatedAt returns the last modification time
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }

// MarkSeen records delivery. Already-seen items are left untouched.
func (i *Item) MarkSeen() {
	if i.seen {
		return
	}
	i.seen = true
	i.updatedAt = time.Now()
}

// MarkCalled records that the viewer opened the content. Implies seen.
func (i *Item) MarkCalled() {
	if i.called {
		return
	}
	i.seen = true
	i.called = true
	i.updatedAt = time.Now()
}

// Merge folds a fresh view of grouped content into the item, replacing the
// rendered view and appending the content id to the descriptor refs.
func (i *Item) Merge(view ContentView) {
	i.view = view
	found := false
	for _, ref := range i.descriptor.RefIDs {
		if ref == view.ContentID {
			found = true
			break
		}
	}
	if !found {
		i.descriptor.RefIDs = append(i.descriptor.RefIDs, view.ContentID)
	}
	i.updatedAt = time.Now()
}
