package queries

import (
	"errors"

	"castfeed-backend/pkg/common"
)

// ListContentsByAuthorQuery represents a query for an author's posts
type ListContentsByAuthorQuery struct {
	ViewerID string
	AuthorID string
	Page     common.PaginationParams
}

// Validate validates the ListContentsByAuthorQuery
func (q ListContentsByAuthorQuery) Validate() error {
	if q.ViewerID == "" {
		return errors.New("viewer ID is required")
	}
	if q.AuthorID == "" {
		return errors.New("author ID is required")
	}
	return nil
}

// ContentListResult is a page of posts with pagination metadata
type ContentListResult struct {
	Items      []ContentResult        `json:"items"`
	Pagination *common.PaginationInfo `json:"pagination"`
}
