package queries

import (
	"errors"

	"castfeed-backend/domain/content"
	"castfeed-backend/pkg/common"
	"castfeed-backend/pkg/utils"
)

// ListRevisionsQuery represents a query for a post's edit history
type ListRevisionsQuery struct {
	UserID    string
	ContentID string
	Page      common.PaginationParams
}

// Validate validates the ListRevisionsQuery
func (q ListRevisionsQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.ContentID == "" {
		return errors.New("content ID is required")
	}
	return nil
}

// GetRevisionQuery represents a query for one revision by sequence number
type GetRevisionQuery struct {
	UserID    string
	ContentID string
	Seq       int
}

// Validate validates the GetRevisionQuery
func (q GetRevisionQuery) Validate() error {
	if q.UserID == "" {
		return errors.New("user ID is required")
	}
	if q.ContentID == "" {
		return errors.New("content ID is required")
	}
	if q.Seq < 1 {
		return errors.New("revision sequence must be positive")
	}
	return nil
}

// RevisionResult represents one historical payload snapshot
type RevisionResult struct {
	ContentID string          `json:"contentId"`
	Seq       int             `json:"seq"`
	Payload   content.Payload `json:"payload"`
	CreatedAt string          `json:"createdAt"`
}

// RevisionResultFrom shapes a revision for API responses
func RevisionResultFrom(rev content.Revision) RevisionResult {
	return RevisionResult{
		ContentID: rev.ContentID,
		Seq:       rev.Seq,
		Payload:   rev.Payload,
		CreatedAt: utils.FormatRFC3339(rev.CreatedAt),
	}
}

// RevisionListResult is a page of revisions
type RevisionListResult struct {
	Items      []RevisionResult       `json:"items"`
	Pagination *common.PaginationInfo `json:"pagination"`
}
