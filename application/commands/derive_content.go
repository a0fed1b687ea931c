package commands

import (
	"context"
	"errors"

	"castfeed-backend/application/services"
	"castfeed-backend/domain/content"
)

// RecastContentCommand represents the command to recast a post
type RecastContentCommand struct {
	RecastID string `json:"recast_id" validate:"required"`
	UserID   string `json:"user_id" validate:"required"`
	SourceID string `json:"source_id" validate:"required"`
}

// Validate validates the command
func (cmd RecastContentCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.SourceID == "" {
		return errors.New("source content ID is required")
	}
	return nil
}

// QuoteContentCommand represents the command to quote a post
type QuoteContentCommand struct {
	QuoteID  string          `json:"quote_id" validate:"required"`
	UserID   string          `json:"user_id" validate:"required"`
	SourceID string          `json:"source_id" validate:"required"`
	Payload  content.Payload `json:"payload"`
}

// Validate validates the command
func (cmd QuoteContentCommand) Validate() error {
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.SourceID == "" {
		return errors.New("source content ID is required")
	}
	return nil
}

// DeriveContentHandler handles recast and quote commands through the
// resolver, which collapses chains onto the root post.
type DeriveContentHandler struct {
	resolver *services.CastResolver
}

// NewDeriveContentHandler creates a new handler instance
func NewDeriveContentHandler(resolver *services.CastResolver) *DeriveContentHandler {
	return &DeriveContentHandler{resolver: resolver}
}

// HandleRecast executes the recast command
func (h *DeriveContentHandler) HandleRecast(ctx context.Context, cmd RecastContentCommand) (*content.Content, error) {
	return h.resolver.Recast(ctx, cmd.RecastID, cmd.UserID, cmd.SourceID)
}

// HandleQuote executes the quote command
func (h *DeriveContentHandler) HandleQuote(ctx context.Context, cmd QuoteContentCommand) (*content.Content, error) {
	return h.resolver.Quote(ctx, cmd.QuoteID, cmd.UserID, cmd.SourceID, cmd.Payload)
}
