package commands

import (
	"context"
	"errors"

	"castfeed-backend/application/ports"
	"castfeed-backend/application/services"
	"castfeed-backend/domain/comment"
	pkgerrors "castfeed-backend/pkg/errors"

	"go.uber.org/zap"
)

// CreateCommentCommand represents the command to comment on a post
type CreateCommentCommand struct {
	CommentID string `json:"comment_id" validate:"required"`
	AuthorID  string `json:"author_id" validate:"required"`
	ContentID string `json:"content_id" validate:"required"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// Validate validates the command
func (cmd CreateCommentCommand) Validate() error {
	if cmd.AuthorID == "" {
		return errors.New("author ID is required")
	}
	if cmd.ContentID == "" {
		return errors.New("content ID is required")
	}
	if cmd.Message == "" {
		return errors.New("message is required")
	}
	return nil
}

// ReplyCommentCommand represents the command to reply to a comment
type ReplyCommentCommand struct {
	CommentID string `json:"comment_id" validate:"required"`
	AuthorID  string `json:"author_id" validate:"required"`
	ParentID  string `json:"parent_id" validate:"required"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// Validate validates the command
func (cmd ReplyCommentCommand) Validate() error {
	if cmd.AuthorID == "" {
		return errors.New("author ID is required")
	}
	if cmd.ParentID == "" {
		return errors.New("parent comment ID is required")
	}
	if cmd.Message == "" {
		return errors.New("message is required")
	}
	return nil
}

// UpdateCommentCommand represents the command to edit a comment
type UpdateCommentCommand struct {
	CommentID string `json:"comment_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// Validate validates the command
func (cmd UpdateCommentCommand) Validate() error {
	if cmd.CommentID == "" {
		return errors.New("comment ID is required")
	}
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	if cmd.Message == "" {
		return errors.New("message is required")
	}
	return nil
}

// DeleteCommentCommand represents the command to delete a comment
type DeleteCommentCommand struct {
	CommentID string `json:"comment_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd DeleteCommentCommand) Validate() error {
	if cmd.CommentID == "" {
		return errors.New("comment ID is required")
	}
	if cmd.UserID == "" {
		return errors.New("user ID is required")
	}
	return nil
}

// CommentContentHandler handles the comment subsystem commands. Comment
// counts on the parent post go through the ledger; reply counts live on
// the parent comment.
type CommentContentHandler struct {
	comments ports.CommentRepository
	contents ports.ContentRepository
	ledger   *services.EngagementLedger
	eventBus ports.EventBus
	logger   *zap.Logger
}

// NewCommentContentHandler creates a new handler instance
func NewCommentContentHandler(
	comments ports.CommentRepository,
	contents ports.ContentRepository,
	ledger *services.EngagementLedger,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *CommentContentHandler {
	return &CommentContentHandler{
		comments: comments,
		contents: contents,
		ledger:   ledger,
		eventBus: eventBus,
		logger:   logger,
	}
}

// HandleCreate executes the create comment command
func (h *CommentContentHandler) HandleCreate(ctx context.Context, cmd CreateCommentCommand) (*comment.Comment, error) {
	c, err := h.contents.FindByID(ctx, cmd.ContentID)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted() {
		return nil, pkgerrors.NewNotFoundError("content")
	}

	cm, err := comment.New(cmd.CommentID, cmd.AuthorID, cmd.ContentID, cmd.Message)
	if err != nil {
		return nil, err
	}
	if err := h.comments.Save(ctx, cm); err != nil {
		return nil, err
	}

	if err := h.ledger.RecordComment(ctx, cmd.AuthorID, cmd.ContentID); err != nil {
		return nil, err
	}

	publishAggregate(ctx, h.eventBus, cm, h.logger)
	return cm, nil
}

// HandleReply executes the reply command. Replies count toward the parent
// post's comment counter just like top-level comments.
func (h *CommentContentHandler) HandleReply(ctx context.Context, cmd ReplyCommentCommand) (*comment.Comment, error) {
	parent, err := h.comments.FindByID(ctx, cmd.ParentID)
	if err != nil {
		return nil, err
	}

	reply, err := comment.NewReply(cmd.CommentID, cmd.AuthorID, parent, cmd.Message)
	if err != nil {
		return nil, err
	}
	if err := h.comments.Save(ctx, reply); err != nil {
		return nil, err
	}

	parent.IncrementReplies()
	if err := h.comments.Save(ctx, parent); err != nil {
		return nil, err
	}

	if err := h.ledger.RecordComment(ctx, cmd.AuthorID, reply.ContentID()); err != nil {
		return nil, err
	}

	publishAggregate(ctx, h.eventBus, reply, h.logger)
	return reply, nil
}

// HandleUpdate executes the update comment command
func (h *CommentContentHandler) HandleUpdate(ctx context.Context, cmd UpdateCommentCommand) (*comment.Comment, error) {
	cm, err := h.comments.FindByID(ctx, cmd.CommentID)
	if err != nil {
		return nil, err
	}
	if cm.AuthorID() != cmd.UserID {
		return nil, pkgerrors.NewForbiddenError("comment belongs to another user")
	}

	if err := cm.UpdateMessage(cmd.Message); err != nil {
		return nil, err
	}
	if err := h.comments.Save(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

// HandleDelete executes the delete comment command. A comment with live
// replies is tombstoned so the thread keeps its shape; a leaf comment is
// removed outright. Either way the parent post's counter drops by one.
func (h *CommentContentHandler) HandleDelete(ctx context.Context, cmd DeleteCommentCommand) error {
	cm, err := h.comments.FindByID(ctx, cmd.CommentID)
	if err != nil {
		return err
	}
	if cm.IsDeleted() {
		return pkgerrors.NewNotFoundError("comment")
	}
	if cm.AuthorID() != cmd.UserID {
		return pkgerrors.NewForbiddenError("comment belongs to another user")
	}

	if cm.ReplyCount() > 0 {
		if err := cm.Tombstone(); err != nil {
			return err
		}
		if err := h.comments.Save(ctx, cm); err != nil {
			return err
		}
		publishAggregate(ctx, h.eventBus, cm, h.logger)
	} else {
		if err := h.comments.Delete(ctx, cm.ID()); err != nil {
			return err
		}
		if cm.IsReply() {
			if err := h.decrementParentReplies(ctx, cm.ParentID()); err != nil {
				return err
			}
		}
	}

	return h.ledger.RetractComment(ctx, cmd.UserID, cm.ContentID())
}

func (h *CommentContentHandler) decrementParentReplies(ctx context.Context, parentID string) error {
	parent, err := h.comments.FindByID(ctx, parentID)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	parent.DecrementReplies()
	return h.comments.Save(ctx, parent)
}
