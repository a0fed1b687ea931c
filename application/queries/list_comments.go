package queries

import (
	"errors"

	"castfeed-backend/domain/comment"
	"castfeed-backend/pkg/common"
	"castfeed-backend/pkg/utils"
)

// ListCommentsQuery represents a query for a post's top-level comments
type ListCommentsQuery struct {
	ViewerID  string
	ContentID string
	Page      common.PaginationParams
}

// Validate validates the ListCommentsQuery
func (q ListCommentsQuery) Validate() error {
	if q.ViewerID == "" {
		return errors.New("viewer ID is required")
	}
	if q.ContentID == "" {
		return errors.New("content ID is required")
	}
	return nil
}

// ListRepliesQuery represents a query for the replies under a comment
type ListRepliesQuery struct {
	ViewerID string
	ParentID string
	Page     common.PaginationParams
}

// Validate validates the ListRepliesQuery
func (q ListRepliesQuery) Validate() error {
	if q.ViewerID == "" {
		return errors.New("viewer ID is required")
	}
	if q.ParentID == "" {
		return errors.New("parent comment ID is required")
	}
	return nil
}

// CommentResult represents a comment shaped for API responses. Tombstoned
// comments keep their place in the thread with an empty message.
type CommentResult struct {
	ID         string `json:"id"`
	ContentID  string `json:"contentId"`
	ParentID   string `json:"parentId,omitempty"`
	AuthorID   string `json:"authorId"`
	Message    string `json:"message"`
	LikeCount  int    `json:"likeCount"`
	Liked      bool   `json:"liked"`
	ReplyCount int    `json:"replyCount"`
	Deleted    bool   `json:"deleted,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// CommentResultFrom shapes a comment for the given viewer
func CommentResultFrom(cm *comment.Comment, viewerID string) CommentResult {
	likes := cm.Likes()
	return CommentResult{
		ID:         cm.ID(),
		ContentID:  cm.ContentID(),
		ParentID:   cm.ParentID(),
		AuthorID:   cm.AuthorID(),
		Message:    cm.Message(),
		LikeCount:  likes.Count,
		Liked:      likes.Engaged(viewerID),
		ReplyCount: cm.ReplyCount(),
		Deleted:    cm.IsDeleted(),
		CreatedAt:  utils.FormatRFC3339(cm.CreatedAt()),
		UpdatedAt:  utils.FormatRFC3339(cm.UpdatedAt()),
	}
}

// CommentListResult is a page of comments
type CommentListResult struct {
	Items      []CommentResult        `json:"items"`
	Pagination *common.PaginationInfo `json:"pagination"`
}
