package commands

import (
	"context"
	"errors"

	"castfeed-backend/application/services"
)

// DeleteContentCommand represents the command to soft delete a post
type DeleteContentCommand struct {
	ContentID string `json:"content_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd DeleteContentCommand) Validate() error {
	if cmd.ContentID == "" {
		return errors.New("content ID is required")
	}
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// DeleteContentHandler handles the DeleteContentCommand. The cascade
// ordering lives in the resolver; this handler only fronts it.
type DeleteContentHandler struct {
	resolver *services.CastResolver
}

// NewDeleteContentHandler creates a new handler instance
func NewDeleteContentHandler(resolver *services.CastResolver) *DeleteContentHandler {
	return &DeleteContentHandler{resolver: resolver}
}

// Handle executes the delete content command
func (h *DeleteContentHandler) Handle(ctx context.Context, cmd DeleteContentCommand) error {
	return h.resolver.Delete(ctx, cmd.UserID, cmd.ContentID)
}
