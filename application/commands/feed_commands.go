package commands

import (
	"context"
	"errors"

	"castfeed-backend/application/ports"
	"castfeed-backend/application/services"
)

// MarkFeedSeenCommand flips the seen flag on a timeline item
type MarkFeedSeenCommand struct {
	ViewerID string `json:"viewer_id" validate:"required"`
	ItemID   string `json:"item_id" validate:"required"`
}

// Validate validates the command
func (cmd MarkFeedSeenCommand) Validate() error {
	return validateFeedItem(cmd.ViewerID, cmd.ItemID)
}

// MarkFeedCalledCommand records that the viewer opened an item's content
type MarkFeedCalledCommand struct {
	ViewerID string `json:"viewer_id" validate:"required"`
	ItemID   string `json:"item_id" validate:"required"`
}

// Validate validates the command
func (cmd MarkFeedCalledCommand) Validate() error {
	return validateFeedItem(cmd.ViewerID, cmd.ItemID)
}

func validateFeedItem(viewerID, itemID string) error {
	if viewerID == "" {
		return errors.New("viewer ID is required")
	}
	if itemID == "" {
		return errors.New("item ID is required")
	}
	return nil
}

// FollowCommand subscribes one user to another's posts
type FollowCommand struct {
	FollowerID string `json:"follower_id" validate:"required"`
	FolloweeID string `json:"followee_id" validate:"required"`
}

// Validate validates the command
func (cmd FollowCommand) Validate() error {
	return validateFollow(cmd.FollowerID, cmd.FolloweeID)
}

// UnfollowCommand removes a follow edge
type UnfollowCommand struct {
	FollowerID string `json:"follower_id" validate:"required"`
	FolloweeID string `json:"followee_id" validate:"required"`
}

// Validate validates the command
func (cmd UnfollowCommand) Validate() error {
	return validateFollow(cmd.FollowerID, cmd.FolloweeID)
}

func validateFollow(followerID, followeeID string) error {
	if followerID == "" {
		return errors.New("follower ID is required")
	}
	if followeeID == "" {
		return errors.New("followee ID is required")
	}
	if followerID == followeeID {
		return errors.New("cannot follow yourself")
	}
	return nil
}

// FeedCommandHandler handles timeline state and follow graph commands
type FeedCommandHandler struct {
	materializer  *services.FeedMaterializer
	relationships ports.RelationshipRepository
}

// NewFeedCommandHandler creates a new handler instance
func NewFeedCommandHandler(
	materializer *services.FeedMaterializer,
	relationships ports.RelationshipRepository,
) *FeedCommandHandler {
	return &FeedCommandHandler{
		materializer:  materializer,
		relationships: relationships,
	}
}

// HandleMarkSeen executes the mark seen command
func (h *FeedCommandHandler) HandleMarkSeen(ctx context.Context, cmd MarkFeedSeenCommand) error {
	return h.materializer.MarkSeen(ctx, cmd.ViewerID, cmd.ItemID)
}

// HandleMarkCalled executes the mark called command
func (h *FeedCommandHandler) HandleMarkCalled(ctx context.Context, cmd MarkFeedCalledCommand) error {
	return h.materializer.MarkCalled(ctx, cmd.ViewerID, cmd.ItemID)
}

// HandleFollow executes the follow command
func (h *FeedCommandHandler) HandleFollow(ctx context.Context, cmd FollowCommand) error {
	return h.relationships.Follow(ctx, cmd.FollowerID, cmd.FolloweeID)
}

// HandleUnfollow executes the unfollow command
func (h *FeedCommandHandler) HandleUnfollow(ctx context.Context, cmd UnfollowCommand) error {
	return h.relationships.Unfollow(ctx, cmd.FollowerID, cmd.FolloweeID)
}
