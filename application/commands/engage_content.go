package commands

import (
	"context"
	"errors"

	"castfeed-backend/application/services"
)

// LikeContentCommand represents the command to like a post
type LikeContentCommand struct {
	ContentID string `json:"content_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd LikeContentCommand) Validate() error {
	return validateEngagement(cmd.UserID, cmd.ContentID)
}

// UnlikeContentCommand represents the command to withdraw a like from a post
type UnlikeContentCommand struct {
	ContentID string `json:"content_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd UnlikeContentCommand) Validate() error {
	return validateEngagement(cmd.UserID, cmd.ContentID)
}

// LikeCommentCommand represents the command to like a comment
type LikeCommentCommand struct {
	CommentID string `json:"comment_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd LikeCommentCommand) Validate() error {
	return validateEngagement(cmd.UserID, cmd.CommentID)
}

// UnlikeCommentCommand represents the command to withdraw a like from a comment
type UnlikeCommentCommand struct {
	CommentID string `json:"comment_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd UnlikeCommentCommand) Validate() error {
	return validateEngagement(cmd.UserID, cmd.CommentID)
}

// ReconcileContentCommand represents the command to rebuild one post's
// cached counters from the record set.
type ReconcileContentCommand struct {
	ContentID string `json:"content_id" validate:"required"`
}

// Validate validates the command
func (cmd ReconcileContentCommand) Validate() error {
	if cmd.ContentID == "" {
		return errors.New("content ID is required")
	}
	return nil
}

func validateEngagement(userID, targetID string) error {
	if userID == "" {
		return errors.New("user ID is required")
	}
	if targetID == "" {
		return errors.New("target ID is required")
	}
	return nil
}

// EngageContentHandler routes engagement commands into the ledger
type EngageContentHandler struct {
	ledger *services.EngagementLedger
}

// NewEngageContentHandler creates a new handler instance
func NewEngageContentHandler(ledger *services.EngagementLedger) *EngageContentHandler {
	return &EngageContentHandler{ledger: ledger}
}

// HandleLikeContent executes the like content command
func (h *EngageContentHandler) HandleLikeContent(ctx context.Context, cmd LikeContentCommand) error {
	_, err := h.ledger.LikeContent(ctx, cmd.UserID, cmd.ContentID)
	return err
}

// HandleUnlikeContent executes the unlike content command
func (h *EngageContentHandler) HandleUnlikeContent(ctx context.Context, cmd UnlikeContentCommand) error {
	_, err := h.ledger.UnlikeContent(ctx, cmd.UserID, cmd.ContentID)
	return err
}

// HandleLikeComment executes the like comment command
func (h *EngageContentHandler) HandleLikeComment(ctx context.Context, cmd LikeCommentCommand) error {
	_, err := h.ledger.LikeComment(ctx, cmd.UserID, cmd.CommentID)
	return err
}

// HandleUnlikeComment executes the unlike comment command
func (h *EngageContentHandler) HandleUnlikeComment(ctx context.Context, cmd UnlikeCommentCommand) error {
	_, err := h.ledger.UnlikeComment(ctx, cmd.UserID, cmd.CommentID)
	return err
}

// HandleReconcile executes the reconcile command
func (h *EngageContentHandler) HandleReconcile(ctx context.Context, cmd ReconcileContentCommand) error {
	_, err := h.ledger.ReconcileContent(ctx, cmd.ContentID)
	return err
}
