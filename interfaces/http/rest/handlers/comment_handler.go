package handlers

import (
	"encoding/json"
	"net/http"

	"castfeed-backend/application/commands"
	"castfeed-backend/application/commands/bus"
	"castfeed-backend/application/queries"
	querybus "castfeed-backend/application/queries/bus"
	"castfeed-backend/pkg/common"
	pkgerrors "castfeed-backend/pkg/errors"
	"castfeed-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *CommentHandler {
	return &CommentHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     pkgerrors.NewErrorHandler(logger, false),
		logger:     logger,
	}
}

// CommentRequest represents the request body carrying a comment message
type CommentRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// CreateCommentResponse represents the response for creating a comment
type CreateCommentResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// Create handles POST /contents/{contentID}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	commentID := uuid.New().String()

	cmd := commands.CreateCommentCommand{
		CommentID: commentID,
		AuthorID:  userID,
		ContentID: contentID,
		Message:   req.Message,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, CreateCommentResponse{
		ID:        commentID,
		Message:   "Comment created successfully",
		CreatedAt: utils.NowRFC3339(),
	})
}

// Reply handles POST /comments/{commentID}/replies
func (h *CommentHandler) Reply(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "commentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	commentID := uuid.New().String()

	cmd := commands.ReplyCommentCommand{
		CommentID: commentID,
		AuthorID:  userID,
		ParentID:  parentID,
		Message:   req.Message,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, CreateCommentResponse{
		ID:        commentID,
		Message:   "Reply created successfully",
		CreatedAt: utils.NowRFC3339(),
	})
}

// Update handles PUT /comments/{commentID}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	cmd := commands.UpdateCommentCommand{
		CommentID: commentID,
		UserID:    userID,
		Message:   req.Message,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Comment updated successfully",
		"id":      commentID,
	})
}

// Delete handles DELETE /comments/{commentID}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.DeleteCommentCommand{
		CommentID: commentID,
		UserID:    userID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Comment deleted successfully",
		"id":      commentID,
	})
}

// List handles GET /contents/{contentID}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListCommentsQuery{
		ViewerID:  userID,
		ContentID: contentID,
		Page:      common.ExtractPaginationParams(r),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// ListReplies handles GET /comments/{commentID}/replies
func (h *CommentHandler) ListReplies(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "commentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListRepliesQuery{
		ViewerID: userID,
		ParentID: parentID,
		Page:     common.ExtractPaginationParams(r),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// Like handles POST /comments/{commentID}/like
func (h *CommentHandler) Like(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.LikeCommentCommand{
		CommentID: commentID,
		UserID:    userID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Liked"})
}

// Unlike handles DELETE /comments/{commentID}/like
func (h *CommentHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.UnlikeCommentCommand{
		CommentID: commentID,
		UserID:    userID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Unliked"})
}
