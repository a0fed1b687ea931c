package commands

import (
	"context"
	"errors"

	"castfeed-backend/application/ports"
	"castfeed-backend/domain/content"
	pkgerrors "castfeed-backend/pkg/errors"

	"go.uber.org/zap"
)

// UpdateContentCommand represents the command to revise a post's payload
type UpdateContentCommand struct {
	ContentID string          `json:"content_id" validate:"required"`
	UserID    string          `json:"user_id" validate:"required"`
	Payload   content.Payload `json:"payload"`
}

// Validate validates the command
func (cmd UpdateContentCommand) Validate() error {
	if cmd.ContentID == "" {
		return errors.New("content ID is required")
	}
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// UpdateContentHandler handles the UpdateContentCommand
type UpdateContentHandler struct {
	contents ports.ContentRepository
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewUpdateContentHandler creates a new handler instance
func NewUpdateContentHandler(
	contents ports.ContentRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *UpdateContentHandler {
	return &UpdateContentHandler{
		contents: contents,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Handle executes the update content command. Every successful update
// grows the revision history by exactly one entry.
func (h *UpdateContentHandler) Handle(ctx context.Context, cmd UpdateContentCommand) (*content.Content, error) {
	c, err := h.contents.FindByID(ctx, cmd.ContentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorID() != cmd.UserID {
		return nil, pkgerrors.NewForbiddenError("content belongs to another user")
	}

	if err := c.UpdatePayload(cmd.Payload); err != nil {
		return nil, err
	}

	if err := h.contents.Save(ctx, c); err != nil {
		return nil, err
	}
	if err := h.contents.SaveRevision(ctx, c.CurrentRevision()); err != nil {
		return nil, err
	}

	publishAggregate(ctx, h.eventBus, c, h.logger)
	return c, nil
}
