package queries

import (
	"errors"

	"castfeed-backend/domain/feed"
	"castfeed-backend/pkg/utils"
)

// GetFeedQuery represents a query for one page of a viewer's timeline
type GetFeedQuery struct {
	ViewerID string
	Cursor   string
	Limit    int
}

// Validate validates the GetFeedQuery
func (q GetFeedQuery) Validate() error {
	if q.ViewerID == "" {
		return errors.New("viewer ID is required")
	}
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}

// FeedItemResult represents one timeline entry shaped for API responses
type FeedItemResult struct {
	ID         string           `json:"id"`
	Content    feed.ContentView `json:"content"`
	Aggregator feed.Descriptor  `json:"aggregator"`
	Seen       bool             `json:"seen"`
	Called     bool             `json:"called"`
	CreatedAt  string           `json:"createdAt"`
}

// FeedItemResultFrom shapes a feed item for API responses
func FeedItemResultFrom(item *feed.Item) FeedItemResult {
	return FeedItemResult{
		ID:         item.ID(),
		Content:    item.View(),
		Aggregator: item.Descriptor(),
		Seen:       item.Seen(),
		Called:     item.Called(),
		CreatedAt:  utils.FormatRFC3339(item.CreatedAt()),
	}
}

// FeedPageResult is a cursor-paged slice of a timeline
type FeedPageResult struct {
	Items      []FeedItemResult `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
}
