package handlers

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/application/queries"
	"castfeed-backend/domain/comment"
	"castfeed-backend/pkg/common"

	"go.uber.org/zap"
)

// ListCommentsHandler handles the comment thread queries
type ListCommentsHandler struct {
	comments ports.CommentRepository
	logger   *zap.Logger
}

// NewListCommentsHandler creates a new handler instance
func NewListCommentsHandler(comments ports.CommentRepository, logger *zap.Logger) *ListCommentsHandler {
	return &ListCommentsHandler{comments: comments, logger: logger}
}

// HandleList executes the ListCommentsQuery for top-level comments
func (h *ListCommentsHandler) HandleList(ctx context.Context, query queries.ListCommentsQuery) (*queries.CommentListResult, error) {
	page := query.Page.Normalize()

	items, total, err := h.comments.FindByContent(ctx, query.ContentID, page)
	if err != nil {
		return nil, err
	}
	return h.shape(items, total, page, query.ViewerID), nil
}

// HandleReplies executes the ListRepliesQuery
func (h *ListCommentsHandler) HandleReplies(ctx context.Context, query queries.ListRepliesQuery) (*queries.CommentListResult, error) {
	page := query.Page.Normalize()

	items, total, err := h.comments.FindReplies(ctx, query.ParentID, page)
	if err != nil {
		return nil, err
	}
	return h.shape(items, total, page, query.ViewerID), nil
}

func (h *ListCommentsHandler) shape(items []*comment.Comment, total int, page common.PaginationParams, viewerID string) *queries.CommentListResult {
	results := make([]queries.CommentResult, 0, len(items))
	for _, cm := range items {
		results = append(results, queries.CommentResultFrom(cm, viewerID))
	}
	return &queries.CommentListResult{
		Items:      results,
		Pagination: common.BuildPaginationMeta(page.Page, page.Limit, total),
	}
}
