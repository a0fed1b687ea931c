package feed

import (
	"castfeed-backend/domain/content"
)

// AggregatorCreateTime is the default materialization strategy: one feed
// item per piece of content, ordered by creation time.
const AggregatorCreateTime = "createTime"

// Descriptor records which strategy produced a feed item and which content
// ids were folded into it. Items produced by a grouping strategy carry more
// than one ref.
type Descriptor struct {
	Type     string   `json:"type"`
	GroupKey string   `json:"group_key"`
	RefIDs   []string `json:"ref_ids"`
}

// Strategy decides how freshly published content folds into a viewer's
// timeline. Two contents that map to the same group key for a viewer share
// a single feed item.
type Strategy interface {
	Name() string
	GroupKey(viewerID string, c *content.Content) string
}

// CreateTimeStrategy maps every content to its own group, so each post gets
// its own feed item and an edit refreshes the item in place.
type CreateTimeStrategy struct{}

// NewCreateTimeStrategy creates the default strategy
func NewCreateTimeStrategy() *CreateTimeStrategy {
	return &CreateTimeStrategy{}
}

// Name identifies the strategy in stored descriptors
func (s *CreateTimeStrategy) Name() string { return AggregatorCreateTime }

// GroupKey returns the content id: no cross-content grouping
func (s *CreateTimeStrategy) GroupKey(viewerID string, c *content.Content) string {
	return c.ID()
}
