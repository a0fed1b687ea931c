package commands

import (
	"context"
	"errors"

	"castfeed-backend/application/ports"
	"castfeed-backend/domain/content"

	"go.uber.org/zap"
)

// CreateContentCommand represents the command to publish a new post
type CreateContentCommand struct {
	ContentID   string          `json:"content_id" validate:"required"`
	AuthorID    string          `json:"author_id" validate:"required"`
	ContentType string          `json:"content_type" validate:"required,oneof=short blog image"`
	Payload     content.Payload `json:"payload"`
}

// Validate validates the command
func (cmd CreateContentCommand) Validate() error {
	if cmd.AuthorID == "" {
		return errors.New("author ID is required")
	}
	if cmd.ContentType == "" {
		return errors.New("content type is required")
	}
	return nil
}

// CreateContentHandler handles the CreateContentCommand
type CreateContentHandler struct {
	contents ports.ContentRepository
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewCreateContentHandler creates a new handler instance
func NewCreateContentHandler(
	contents ports.ContentRepository,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *CreateContentHandler {
	return &CreateContentHandler{
		contents: contents,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Handle executes the create content command
func (h *CreateContentHandler) Handle(ctx context.Context, cmd CreateContentCommand) (*content.Content, error) {
	contentType, err := content.ParseType(cmd.ContentType)
	if err != nil {
		return nil, err
	}

	c, err := content.New(cmd.ContentID, cmd.AuthorID, contentType, cmd.Payload)
	if err != nil {
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
