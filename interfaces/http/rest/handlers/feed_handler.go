package handlers

import (
	"net/http"
	"strconv"

	"castfeed-backend/application/commands"
	"castfeed-backend/application/commands/bus"
	"castfeed-backend/application/queries"
	querybus "castfeed-backend/application/queries/bus"
	"castfeed-backend/pkg/common"
	pkgerrors "castfeed-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FeedHandler handles timeline and follow graph HTTP requests
type FeedHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *FeedHandler {
	return &FeedHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     pkgerrors.NewErrorHandler(logger, false),
		logger:     logger,
	}
}

// GetFeed handles GET /feed. The limit parameter is clamped downstream;
// seen and called flags only change through the acknowledgment endpoints.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetFeedQuery{
		ViewerID: userID,
		Cursor:   r.URL.Query().Get("cursor"),
		Limit:    limit,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// MarkSeen handles POST /feed/{itemID}/seen
func (h *FeedHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.MarkFeedSeenCommand{
		ViewerID: userID,
		ItemID:   itemID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Marked seen"})
}

// MarkCalled handles POST /feed/{itemID}/called
func (h *FeedHandler) MarkCalled(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.MarkFeedCalledCommand{
		ViewerID: userID,
		ItemID:   itemID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Marked called"})
}

// Follow handles POST /users/{userID}/follow
func (h *FeedHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followeeID := chi.URLParam(r, "userID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.FollowCommand{
		FollowerID: userID,
		FolloweeID: followeeID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Followed"})
}

// Unfollow handles DELETE /users/{userID}/follow
func (h *FeedHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followeeID := chi.URLParam(r, "userID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.UnfollowCommand{
		FollowerID: userID,
		FolloweeID: followeeID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed"})
}
