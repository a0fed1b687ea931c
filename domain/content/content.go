package content

import (
	"time"

	"castfeed-backend/domain/engagement"
	"castfeed-backend/domain/events"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/google/uuid"
)

// Visibility is the lifecycle state of a piece of content
type Visibility string

const (
	VisibilityPublished Visibility = "published"
	VisibilityDeleted   Visibility = "deleted"
)

// OriginalRef is the snapshot of a source post that a recast or quote
// carries. It is denormalized at creation time so derived content keeps
// rendering after the source is edited, and flips to a tombstone view when
// the source is deleted.
type OriginalRef struct {
	ID         string  `json:"id"`
	AuthorID   string  `json:"author_id"`
	Type       Type    `json:"type"`
	Payload    Payload `json:"payload"`
	Tombstoned bool    `json:"tombstoned,omitempty"`
}

// Content is the aggregate root of the content subsystem. A Content is
// either an original post (short, blog, image) or a derived post (recast,
// quote) that snapshots its source. State changes go through methods so the
// revision counter, cached engagement summaries, and raised domain events
// stay consistent.
type Content struct {
	id            string
	authorID      string
	contentType   Type
	payload       Payload
	hashtags      []string
	originalRef   *OriginalRef
	engagements   map[engagement.Kind]engagement.Summary
	revisionCount int
	visibility    Visibility
	createdAt     time.Time
	updatedAt     time.Time

	events []events.DomainEvent
}

// New creates an original (non-derived) piece of content. The id is
// usually pre-generated by the caller so it can be returned before the
// write settles; an empty id gets a fresh one.
func New(id, authorID string, contentType Type, payload Payload) (*Content, error) {
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("authorID cannot be empty")
	}
	if contentType.IsDerived() {
		return nil, pkgerrors.NewValidationError("derived content requires a source post")
	}
	if err := payload.ValidateFor(contentType); err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now()
	c := &Content{
		id:            id,
		authorID:      authorID,
		contentType:   contentType,
		payload:       payload,
		hashtags:      payload.Hashtags(),
		engagements:   make(map[engagement.Kind]engagement.Summary),
		revisionCount: 1,
		visibility:    VisibilityPublished,
		createdAt:     now,
		updatedAt:     now,
	}
	c.addEvent(events.NewContentCreated(c.id, authorID, string(contentType), ""))
	return c, nil
}

// NewRecast creates a recast of the given source snapshot. The recast
// carries no payload of its own.
func NewRecast(id, authorID string, original OriginalRef) (*Content, error) {
	return newDerived(id, authorID, TypeRecast, Payload{}, original)
}

// NewQuote creates a quote of the given source snapshot with the quoting
// commentary as its payload.
func NewQuote(id, authorID string, payload Payload, original OriginalRef) (*Content, error) {
	return newDerived(id, authorID, TypeQuote, payload, original)
}

func newDerived(id, authorID string, contentType Type, payload Payload, original OriginalRef) (*Content, error) {
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("authorID cannot be empty")
	}
	if original.ID == "" {
		return nil, pkgerrors.NewValidationError("source content id cannot be empty")
	}
	if original.Tombstoned {
		return nil, pkgerrors.NewNotFoundError("content")
	}
	if err := payload.ValidateFor(contentType); err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now()
	ref := original
	c := &Content{
		id:            id,
		authorID:      authorID,
		contentType:   contentType,
		payload:       payload,
		hashtags:      payload.Hashtags(),
		originalRef:   &ref,
		engagements:   make(map[engagement.Kind]engagement.Summary),
		revisionCount: 1,
		visibility:    VisibilityPublished,
		createdAt:     now,
		updatedAt:     now,
	}
	c.addEvent(events.NewContentCreated(c.id, authorID, string(contentType), original.ID))
	return c, nil
}

// Reconstruct rebuilds a Content from persisted state without raising events
func Reconstruct(
	id, authorID string,
	contentType Type,
	payload Payload,
	hashtags []string,
	originalRef *OriginalRef,
	engagements map[engagement.Kind]engagement.Summary,
	revisionCount int,
	visibility Visibility,
	createdAt, updatedAt time.Time,
) *Content {
	if engagements == nil {
		engagements = make(map[engagement.Kind]engagement.Summary)
	}
	return &Content{
		id:            id,
		authorID:      authorID,
		contentType:   contentType,
		payload:       payload,
		hashtags:      hashtags,
		originalRef:   originalRef,
		engagements:   engagements,
		revisionCount: revisionCount,
		visibility:    visibility,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// ID returns the content identifier
func (c *Content) ID() string { return c.id }

// AuthorID returns the owning author
func (c *Content) AuthorID() string { return c.authorID }

// Type returns the content type
func (c *Content) Type() Type { return c.contentType }

// Payload returns the authored body
func (c *Content) Payload() Payload { return c.payload }

// Hashtags returns the tags extracted from the current payload
func (c *Content) Hashtags() []string { return c.hashtags }

// IsRecast reports whether this content is a recast
func (c *Content) IsRecast() bool { return c.contentType == TypeRecast }

// IsQuote reports whether this content is a quote
func (c *Content) IsQuote() bool { return c.contentType == TypeQuote }

// OriginalRef returns the source snapshot for derived content, nil otherwise
func (c *Content) OriginalRef() *OriginalRef {
	if c.originalRef == nil {
		return nil
	}
	ref := *c.originalRef
	return &ref
}

// RevisionCount returns how many payload versions exist, including the
// creation snapshot.
func (c *Content) RevisionCount() int { return c.revisionCount }

// Visibility returns the lifecycle state
func (c *Content) Visibility() Visibility { return c.visibility }

// IsDeleted reports whether the content has been soft deleted
func (c *Content) IsDeleted() bool { return c.visibility == VisibilityDeleted }

// CreatedAt returns the creation time
func (c *Content) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last modification time
func (c *Content) UpdatedAt() time.Time { return c.updatedAt }

// Engagements returns a copy of the cached per-kind summaries
func (c *Content) Engagements() map[engagement.Kind]engagement.Summary {
	out := make(map[engagement.Kind]engagement.Summary, len(c.engagements))
	for k, v := range c.engagements {
		out[k] = v
	}
	return out
}

// EngagementCount returns the cached count for one kind
func (c *Content) EngagementCount(kind engagement.Kind) int {
	return c.engagements[kind].Count
}

// EngagedBy reports whether userID is a cached participant for the kind
func (c *Content) EngagedBy(kind engagement.Kind, userID string) bool {
	return c.engagements[kind].Engaged(userID)
}

// Snapshot produces the OriginalRef a new recast or quote of this content
// should carry. A deleted source yields a tombstoned snapshot.
func (c *Content) Snapshot() OriginalRef {
	ref := OriginalRef{
		ID:       c.id,
		AuthorID: c.authorID,
		Type:     c.contentType,
		Payload:  c.payload,
	}
	if c.IsDeleted() {
		ref.Tombstoned = true
		ref.Payload = Payload{}
	}
	return ref
}

// UpdatePayload replaces the authored body, growing the revision counter.
// Derived recasts have no editable body; quotes may edit their commentary.
func (c *Content) UpdatePayload(payload Payload) error {
	if c.IsDeleted() {
		return pkgerrors.NewNotFoundError("content")
	}
	if c.contentType == TypeRecast {
		return pkgerrors.NewValidationError("recast has no editable payload")
	}
	if err := payload.ValidateFor(c.contentType); err != nil {
		return err
	}

	c.payload = payload
	c.hashtags = payload.Hashtags()
	c.revisionCount++
	c.updatedAt = time.Now()
	c.addEvent(events.NewContentUpdated(c.id, c.authorID, c.revisionCount))
	return nil
}

// CurrentRevision returns the revision snapshot matching the live payload
func (c *Content) CurrentRevision() Revision {
	return Revision{
		ContentID: c.id,
		Seq:       c.revisionCount,
		Payload:   c.payload,
		CreatedAt: c.updatedAt,
	}
}

// SoftDelete marks the content deleted. The record survives as a tombstone
// so derived posts and comment threads keep a target to point at.
func (c *Content) SoftDelete() error {
	if c.IsDeleted() {
		return pkgerrors.NewNotFoundError("content")
	}
	originalID := ""
	if c.originalRef != nil {
		originalID = c.originalRef.ID
	}
	c.visibility = VisibilityDeleted
	c.updatedAt = time.Now()
	c.addEvent(events.NewContentDeleted(c.id, c.authorID, string(c.contentType), originalID))
	return nil
}

// ApplyEngagement records a participant in the cached summary for a kind.
// Re-applying for the same user is a no-op; idempotence against the ledger
// is enforced one level up where the authoritative records live.
func (c *Content) ApplyEngagement(kind engagement.Kind, userID string) {
	c.engagements[kind] = c.engagements[kind].Add(userID)
	c.updatedAt = time.Now()
}

// ApplyEngagementOccurrence bumps the cached count for a kind without the
// per-user idempotence of ApplyEngagement. Comment and quote counts use
// this path since one user may engage repeatedly.
func (c *Content) ApplyEngagementOccurrence(kind engagement.Kind, userID string) {
	c.engagements[kind] = c.engagements[kind].AddOccurrence(userID)
	c.updatedAt = time.Now()
}

// RetractEngagementOccurrence lowers the cached count for a kind by one
func (c *Content) RetractEngagementOccurrence(kind engagement.Kind) {
	c.engagements[kind] = c.engagements[kind].RemoveOccurrence()
	c.updatedAt = time.Now()
}

// RetractEngagement removes a participant from the cached summary for a kind
func (c *Content) RetractEngagement(kind engagement.Kind, userID string) {
	c.engagements[kind] = c.engagements[kind].Remove(userID)
	c.updatedAt = time.Now()
}

// ReplaceEngagements overwrites the cached summaries wholesale. Used by
// reconciliation when the cache has drifted from the record set.
func (c *Content) ReplaceEngagements(summaries map[engagement.Kind]engagement.Summary) {
	c.engagements = make(map[engagement.Kind]engagement.Summary, len(summaries))
	for k, v := range summaries {
		c.engagements[k] = v
	}
	c.updatedAt = time.Now()
}

// MarkOriginalTombstoned flips the carried source snapshot to its tombstone
// view after the source post is deleted.
func (c *Content) MarkOriginalTombstoned() {
	if c.originalRef == nil || c.originalRef.Tombstoned {
		return
	}
	c.originalRef.Tombstoned = true
	c.originalRef.Payload = Payload{}
	c.updatedAt = time.Now()
}

// GetUncommittedEvents returns events raised since the last commit
func (c *Content) GetUncommittedEvents() []events.DomainEvent {
	return c.events
}

// MarkEventsAsCommitted clears the raised events after publishing
func (c *Content) MarkEventsAsCommitted() {
	c.events = nil
}

func (c *Content) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}
