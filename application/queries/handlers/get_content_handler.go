package handlers

import (
	"context"

	"castfeed-backend/application/ports"
	"castfeed-backend/application/queries"

	"go.uber.org/zap"
)

// GetContentHandler handles GetContentQuery
type GetContentHandler struct {
	contents ports.ContentRepository
	signer   ports.MediaSigner
	logger   *zap.Logger
}

// NewGetContentHandler creates a new handler instance
func NewGetContentHandler(contents ports.ContentRepository, signer ports.MediaSigner, logger *zap.Logger) *GetContentHandler {
	return &GetContentHandler{contents: contents, signer: signer, logger: logger}
}

// Handle executes the query. Deleted posts come back as tombstone views
// rather than not-found, so clients holding stale references can render
// something sensible.
func (h *GetContentHandler) Handle(ctx context.Context, query queries.GetContentQuery) (*queries.ContentResult, error) {
	c, err := h.contents.FindByID(ctx, query.ContentID)
	if err != nil {
		return nil, err
	}
	result := queries.ContentResultFrom(c, query.ViewerID)
	signResult(ctx, h.signer, &result)
	return &result, nil
}

// signResult runs the view payloads through the media signer, including the
// snapshot carried by a derived post.
func signResult(ctx context.Context, signer ports.MediaSigner, result *queries.ContentResult) {
	if signer == nil {
		return
	}
	result.Payload = signer.SignPayload(ctx, result.Payload)
	if result.OriginalRef != nil {
		ref := *result.OriginalRef
		ref.Payload = signer.SignPayload(ctx, ref.Payload)
		result.OriginalRef = &ref
	}
}
