package queries

import (
	"errors"

	"castfeed-backend/domain/content"
	"castfeed-backend/pkg/utils"
)

// GetContentQuery represents a query to fetch a single post
type GetContentQuery struct {
	ViewerID  string
	ContentID string
}

// Validate validates the GetContentQuery
func (q GetContentQuery) Validate() error {
	if q.ViewerID == "" {
		return errors.New("viewer ID is required")
	}
	if q.ContentID == "" {
		return errors.New("content ID is required")
	}
	return nil
}

// EngagementView is the per-kind counter as seen by one viewer
type EngagementView struct {
	Count   int  `json:"count"`
	Engaged bool `json:"engaged"`
}

// ContentResult represents a post shaped for API responses. Deleted posts
// come back as tombstones: flagged, payload stripped, counters retained.
type ContentResult struct {
	ID            string                    `json:"id"`
	AuthorID      string                    `json:"authorId"`
	Type          string                    `json:"type"`
	Payload       content.Payload           `json:"payload"`
	Hashtags      []string                  `json:"hashtags,omitempty"`
	OriginalRef   *content.OriginalRef      `json:"originalRef,omitempty"`
	Engagements   map[string]EngagementView `json:"engagements"`
	RevisionCount int                       `json:"revisionCount"`
	Deleted       bool                      `json:"deleted,omitempty"`
	CreatedAt     string                    `json:"createdAt"`
	UpdatedAt     string                    `json:"updatedAt"`
}

// ContentResultFrom shapes a content aggregate for the given viewer
func ContentResultFrom(c *content.Content, viewerID string) ContentResult {
	engagements := make(map[string]EngagementView)
	for kind, summary := range c.Engagements() {
		engagements[string(kind)] = EngagementView{
			Count:   summary.Count,
			Engaged: summary.Engaged(viewerID),
		}
	}

	result := ContentResult{
		ID:            c.ID(),
		AuthorID:      c.AuthorID(),
		Type:          string(c.Type()),
		Payload:       c.Payload(),
		Hashtags:      c.Hashtags(),
		OriginalRef:   c.OriginalRef(),
		Engagements:   engagements,
		RevisionCount: c.RevisionCount(),
		Deleted:       c.IsDeleted(),
		CreatedAt:     utils.FormatRFC3339(c.CreatedAt()),
		UpdatedAt:     utils.FormatRFC3339(c.UpdatedAt()),
	}
	if result.Deleted {
		result.Payload = content.Payload{}
		result.Hashtags = nil
	}
	return result
}
