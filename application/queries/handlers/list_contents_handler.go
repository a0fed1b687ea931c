package handlers

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/application/queries"
	"castfeed-backend/pkg/common"

	"go.uber.org/zap"
)

// ListContentsByAuthorHandler handles ListContentsByAuthorQuery
type ListContentsByAuthorHandler struct {
	contents ports.ContentRepository
	signer   ports.MediaSigner
	logger   *zap.Logger
}

// NewListContentsByAuthorHandler creates a new handler instance
func NewListContentsByAuthorHandler(contents ports.ContentRepository, signer ports.MediaSigner, logger *zap.Logger) *ListContentsByAuthorHandler {
	return &ListContentsByAuthorHandler{contents: contents, signer: signer, logger: logger}
}

// Handle executes the query
func (h *ListContentsByAuthorHandler) Handle(ctx context.Context, query queries.ListContentsByAuthorQuery) (*queries.ContentListResult, error) {
	page := query.Page.Normalize()

	items, total, err := h.contents.FindByAuthor(ctx, query.AuthorID, page)
	if err != nil {
		return nil, err
	}

	results := make([]queries.ContentResult, 0, len(items))
	for _, c := range items {
		result := queries.ContentResultFrom(c, query.ViewerID)
		signResult(ctx, h.signer, &result)
		results = append(results, result)
	}

	return &queries.ContentListResult{
		Items:      results,
		Pagination: common.BuildPaginationMeta(page.Page, page.Limit, total),
	}, nil
}
