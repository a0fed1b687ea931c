package comment

import (
	"strings"
	"time"

	"castfeed-backend/domain/engagement"
	"castfeed-backend/domain/events"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/google/uuid"
)

const maxMessageLength = 2000

// Comment is a user remark attached to a piece of content. Threads are at
// most two levels deep: a top-level comment may have replies, a reply may
// not. Comments keep their own like summary, fed by the same engagement
// ledger as content.
type Comment struct {
	id         string
	contentID  string
	parentID   string
	authorID   string
	message    string
	likes      engagement.Summary
	replyCount int
	deleted    bool
	createdAt  time.Time
	updatedAt  time.Time

	events []events.DomainEvent
}

// New creates a top-level comment on a piece of content. An empty id gets
// a fresh one.
func New(id, authorID, contentID, message string) (*Comment, error) {
	return newComment(id, authorID, contentID, "", message)
}

// NewReply creates a reply under a top-level comment. Replying to a reply
// is rejected to keep threads two levels deep.
func NewReply(id, authorID string, parent *Comment, message string) (*Comment, error) {
	if parent == nil {
		return nil, pkgerrors.NewNotFoundError("comment")
	}
	if parent.IsReply() {
		return nil, pkgerrors.NewValidationError("cannot reply to a reply")
	}
	if parent.deleted {
		return nil, pkgerrors.NewNotFoundError("comment")
	}
	return newComment(id, authorID, parent.contentID, parent.id, message)
}

func newComment(id, authorID, contentID, parentID, message string) (*Comment, error) {
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("authorID cannot be empty")
	}
	if contentID == "" {
		return nil, pkgerrors.NewValidationError("contentID cannot be empty")
	}
	if strings.TrimSpace(message) == "" {
		return nil, pkgerrors.NewValidationError("message cannot be empty")
	}
	if len(message) > maxMessageLength {
		return nil, pkgerrors.NewValidationError("message exceeds maximum length")
	}
	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now()
	c := &Comment{
		id:        id,
		contentID: contentID,
		parentID:  parentID,
		authorID:  authorID,
		message:   message,
		createdAt: now,
		updatedAt: now,
	}
	c.addEvent(events.NewCommentAdded(c.id, contentID, authorID, parentID))
	return c, nil
}

// Reconstruct rebuilds a Comment from persisted state without raising events
func Reconstruct(
	id, contentID, parentID, authorID, message string,
	likes engagement.Summary,
	replyCount int,
	deleted bool,
	createdAt, updatedAt time.Time,
) *Comment {
	return &Comment{
		id:         id,
		contentID:  contentID,
		parentID:   parentID,
		authorID:   authorID,
		message:    message,
		likes:      likes,
		replyCount: replyCount,
		deleted:    deleted,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the comment identifier
func (c *Comment) ID() string { return c.id }

// ContentID returns the content the comment is attached to
func (c *Comment) ContentID() string { return c.contentID }

// ParentID returns the parent comment id, empty for top-level comments
func (c *Comment) ParentID() string { return c.parentID }

// AuthorID returns the comment author
func (c *Comment) AuthorID() string { return c.authorID }

// Message returns the comment body, empty once tombstoned
func (c *Comment) Message() string { return c.message }

// Likes returns the cached like summary
func (c *Comment) Likes() engagement.Summary { return c.likes }

// ReplyCount returns how many live replies hang under this comment
func (c *Comment) ReplyCount() int { return c.replyCount }

// IsReply reports whether this comment is itself a reply
func (c *Comment) IsReply() bool { return c.parentID != "" }

// IsDeleted reports whether the comment is deleted or tombstoned
func (c *Comment) IsDeleted() bool { return c.deleted }

// CreatedAt returns the creation time
func (c *Comment) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the last modification time
func (c *Comment) UpdatedAt() time.Time { return c.updatedAt }

// UpdateMessage replaces the comment body
func (c *Comment) UpdateMessage(message string) error {
	if c.deleted {
		return pkgerrors.NewNotFoundError("comment")
	}
	if strings.TrimSpace(message) == "" {
		return pkgerrors.NewValidationError("message cannot be empty")
	}
	if len(message) > maxMessageLength {
		return pkgerrors.NewValidationError("message exceeds maximum length")
	}
	c.message = message
	c.updatedAt = time.Now()
	return nil
}

// Tombstone blanks the comment but keeps the record so existing replies
// retain their parent. Comments without replies are removed outright
// instead; that choice is made by the caller who can see the reply count.
func (c *Comment) Tombstone() error {
	if c.deleted {
		return pkgerrors.NewNotFoundError("comment")
	}
	c.deleted = true
	c.message = ""
	c.updatedAt = time.Now()
	c.addEvent(events.NewCommentRemoved(c.id, c.contentID, c.authorID))
	return nil
}

// ApplyLike records a liker in the cached summary
func (c *Comment) ApplyLike(userID string) {
	c.likes = c.likes.Add(userID)
	c.updatedAt = time.Now()
}

// RetractLike removes a liker from the cached summary
func (c *Comment) RetractLike(userID string) {
	c.likes = c.likes.Remove(userID)
	c.updatedAt = time.Now()
}

// IncrementReplies bumps the live reply count
func (c *Comment) IncrementReplies() {
	c.replyCount++
	c.updatedAt = time.Now()
}

// DecrementReplies lowers the live reply count, floored at zero
func (c *Comment) DecrementReplies() {
	if c.replyCount > 0 {
		c.replyCount--
	}
	c.updatedAt = time.Now()
}

// GetUncommittedEvents returns events raised since the last commit
func (c *Comment) GetUncommittedEvents() []events.DomainEvent {
	return c.events
}

// MarkEventsAsCommitted clears the raised events after publishing
func (c *Comment) MarkEventsAsCommitted() {
	c.events = nil
}

func (c *Comment) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}
