package events

// Event type identifiers. These appear on the wire as the EventBridge
// DetailType and in-process as bus routing keys.
const (
	EventTypeContentCreated    = "content.created"
	EventTypeContentUpdated    = "content.updated"
	EventTypeContentDeleted    = "content.deleted"
	EventTypeEngagementAdded   = "engagement.added"
	EventTypeEngagementRemoved = "engagement.removed"
	EventTypeCommentAdded      = "comment.added"
	EventTypeCommentRemoved    = "comment.removed"
)

// ContentCreated is raised when a new piece of content is published,
// including recasts and quotes.
type ContentCreated struct {
	BaseEvent
	AuthorID    string `json:"author_id"`
	ContentType string `json:"content_type"`
	OriginalID  string `json:"original_id,omitempty"`
}

// NewContentCreated creates a content creation event
func NewContentCreated(contentID, authorID, contentType, originalID string) ContentCreated {
	return ContentCreated{
		BaseEvent:   NewBaseEvent(contentID, EventTypeContentCreated, 1),
		AuthorID:    authorID,
		ContentType: contentType,
		OriginalID:  originalID,
	}
}

// ContentUpdated is raised when a content payload is revised
type ContentUpdated struct {
	BaseEvent
	AuthorID string `json:"author_id"`
	Revision int    `json:"revision"`
}

// NewContentUpdated creates a content revision event
func NewContentUpdated(contentID, authorID string, revision int) ContentUpdated {
	return ContentUpdated{
		BaseEvent: NewBaseEvent(contentID, EventTypeContentUpdated, 1),
		AuthorID:  authorID,
		Revision:  revision,
	}
}

// ContentDeleted is raised when content is soft deleted
type ContentDeleted struct {
	BaseEvent
	AuthorID    string `json:"author_id"`
	ContentType string `json:"content_type"`
	OriginalID  string `json:"original_id,omitempty"`
}

// NewContentDeleted creates a content deletion event
func NewContentDeleted(contentID, authorID, contentType, originalID string) ContentDeleted {
	return ContentDeleted{
		BaseEvent:   NewBaseEvent(contentID, EventTypeContentDeleted, 1),
		AuthorID:    authorID,
		ContentType: contentType,
		OriginalID:  originalID,
	}
}

// EngagementAdded is raised when a reaction lands on a target
type EngagementAdded struct {
	BaseEvent
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
}

// NewEngagementAdded creates an engagement addition event
func NewEngagementAdded(targetID, userID, kind string) EngagementAdded {
	return EngagementAdded{
		BaseEvent: NewBaseEvent(targetID, EventTypeEngagementAdded, 1),
		UserID:    userID,
		Kind:      kind,
	}
}

// EngagementRemoved is raised when a reaction is withdrawn from a target
type EngagementRemoved struct {
	BaseEvent
	UserID string `json:"user_id"`
	Kind   string `json:"kind"`
}

// NewEngagementRemoved creates an engagement removal event
func NewEngagementRemoved(targetID, userID, kind string) EngagementRemoved {
	return EngagementRemoved{
		BaseEvent: NewBaseEvent(targetID, EventTypeEngagementRemoved, 1),
		UserID:    userID,
		Kind:      kind,
	}
}

// CommentAdded is raised when a comment or reply is created
type CommentAdded struct {
	BaseEvent
	ContentID string `json:"content_id"`
	AuthorID  string `json:"author_id"`
	ParentID  string `json:"parent_id,omitempty"`
}

// NewCommentAdded creates a comment creation event
func NewCommentAdded(commentID, contentID, authorID, parentID string) CommentAdded {
	return CommentAdded{
		BaseEvent: NewBaseEvent(commentID, EventTypeCommentAdded, 1),
		ContentID: contentID,
		AuthorID:  authorID,
		ParentID:  parentID,
	}
}

// CommentRemoved is raised when a comment is deleted or tombstoned
type CommentRemoved struct {
	BaseEvent
	ContentID string `json:"content_id"`
	AuthorID  string `json:"author_id"`
}

// NewCommentRemoved creates a comment removal event
func NewCommentRemoved(commentID, contentID, authorID string) CommentRemoved {
	return CommentRemoved{
		BaseEvent: NewBaseEvent(commentID, EventTypeCommentRemoved, 1),
		ContentID: contentID,
		AuthorID:  authorID,
	}
}
