package handlers

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/application/queries"
	"castfeed-backend/pkg/common"
	pkgerrors "castfeed-backend/pkg/errors"

	"go.uber.org/zap"
)

// RevisionsHandler handles the revision history queries. History is only
// visible to the post's author.
type RevisionsHandler struct {
	contents ports.ContentRepository
	logger   *zap.Logger
}

// NewRevisionsHandler creates a new handler instance
func NewRevisionsHandler(contents ports.ContentRepository, logger *zap.Logger) *RevisionsHandler {
	return &RevisionsHandler{contents: contents, logger: logger}
}

// HandleList executes the ListRevisionsQuery
func (h *RevisionsHandler) HandleList(ctx context.Context, query queries.ListRevisionsQuery) (*queries.RevisionListResult, error) {
	if err := h.authorize(ctx, query.UserID, query.ContentID); err != nil {
		return nil, err
	}

	page := query.Page.Normalize()
	revisions, total, err := h.contents.FindRevisions(ctx, query.ContentID, page)
	if err != nil {
		return nil, err
	}

	results := make([]queries.RevisionResult, 0, len(revisions))
	for _, rev := range revisions {
		results = append(results, queries.RevisionResultFrom(rev))
	}

	return &queries.RevisionListResult{
		Items:      results,
		Pagination: common.BuildPaginationMeta(page.Page, page.Limit, total),
	}, nil
}

// HandleGet executes the GetRevisionQuery
func (h *RevisionsHandler) HandleGet(ctx context.Context, query queries.GetRevisionQuery) (*queries.RevisionResult, error) {
	if err := h.authorize(ctx, query.UserID, query.ContentID); err != nil {
		return nil, err
	}

	rev, err := h.contents.FindRevision(ctx, query.ContentID, query.Seq)
	if err != nil {
		return nil, err
	}
	result := queries.RevisionResultFrom(*rev)
	return &result, nil
}

func (h *RevisionsHandler) authorize(ctx context.Context, userID, contentID string) error {
	c, err := h.contents.FindByID(ctx, contentID)
	if err != nil {
		return err
	}
	if c.AuthorID() != userID {
		return pkgerrors.NewForbiddenError("revision history belongs to another user")
	}
	return nil
}
