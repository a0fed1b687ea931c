package handlers

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/application/queries"
	"castfeed-backend/application/services"

	"go.uber.org/zap"
)

const (
	defaultFeedPageSize = 25
	maxFeedPageSize     = 100
)

// GetFeedHandler handles GetFeedQuery. Reading the feed has no side
// effects; seen and called flags move through their own commands.
type GetFeedHandler struct {
	materializer *services.FeedMaterializer
	signer       ports.MediaSigner
	logger       *zap.Logger
}

// NewGetFeedHandler creates a new handler instance
func NewGetFeedHandler(materializer *services.FeedMaterializer, signer ports.MediaSigner, logger *zap.Logger) *GetFeedHandler {
	return &GetFeedHandler{materializer: materializer, signer: signer, logger: logger}
}

// Handle executes the query
func (h *GetFeedHandler) Handle(ctx context.Context, query queries.GetFeedQuery) (*queries.FeedPageResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultFeedPageSize
	}
	if limit > maxFeedPageSize {
		limit = maxFeedPageSize
	}

	items, next, err := h.materializer.Timeline(ctx, query.ViewerID, query.Cursor, limit)
	if err != nil {
		return nil, err
	}

	results := make([]queries.FeedItemResult, 0, len(items))
	for _, item := range items {
		result := queries.FeedItemResultFrom(item)
		if h.signer != nil {
			result.Content.Payload = h.signer.SignPayload(ctx, result.Content.Payload)
		}
		results = append(results, result)
	}

	return &queries.FeedPageResult{Items: results, NextCursor: next}, nil
}
