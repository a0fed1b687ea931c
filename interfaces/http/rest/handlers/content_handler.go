package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"castfeed-backend/application/commands"
	"castfeed-backend/application/commands/bus"
	"castfeed-backend/application/queries"
	querybus "castfeed-backend/application/queries/bus"
	"castfeed-backend/domain/content"
	"castfeed-backend/pkg/common"
	pkgerrors "castfeed-backend/pkg/errors"
	"castfeed-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContentHandler handles content-related HTTP requests
type ContentHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *ContentHandler {
	return &ContentHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     pkgerrors.NewErrorHandler(logger, false),
		logger:     logger,
	}
}

// CreateContentRequest represents the request body for creating a post
type CreateContentRequest struct {
	Type    string          `json:"type" validate:"required,oneof=short blog image"`
	Payload content.Payload `json:"payload"`
}

// UpdateContentRequest represents the request body for editing a post
type UpdateContentRequest struct {
	Payload content.Payload `json:"payload"`
}

// QuoteContentRequest represents the request body for quoting a post
type QuoteContentRequest struct {
	Payload content.Payload `json:"payload"`
}

// CreateContentResponse represents the response for creating a post
type CreateContentResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	CreatedAt string `json:"createdAt"`
}

// CreateContent handles POST /contents
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req CreateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", err.Error())
		return
	}

	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	contentID := uuid.New().String()

	cmd := commands.CreateContentCommand{
		ContentID:   contentID,
		AuthorID:    userID,
		ContentType: req.Type,
		Payload:     req.Payload,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, CreateContentResponse{
		ID:        contentID,
		Message:   "Content created successfully",
		CreatedAt: utils.NowRFC3339(),
	})
}

// GetContent handles GET /contents/{contentID}
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetContentQuery{
		ViewerID:  userID,
		ContentID: contentID,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateContent handles PUT /contents/{contentID}
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req UpdateContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	cmd := commands.UpdateContentCommand{
		ContentID: contentID,
		UserID:    userID,
		Payload:   req.Payload,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Content updated successfully",
		"id":      contentID,
	})
}

// DeleteContent handles DELETE /contents/{contentID}
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.DeleteContentCommand{
		ContentID: contentID,
		UserID:    userID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{
		"message": "Content deleted successfully",
		"id":      contentID,
	})
}

// ListByAuthor handles GET /users/{userID}/contents
func (h *ContentHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, "userID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListContentsByAuthorQuery{
		ViewerID: userID,
		AuthorID: authorID,
		Page:     common.ExtractPaginationParams(r),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// Recast handles POST /contents/{contentID}/recast
func (h *ContentHandler) Recast(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	recastID := uuid.New().String()

	cmd := commands.RecastContentCommand{
		RecastID: recastID,
		UserID:   userID,
		SourceID: sourceID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, CreateContentResponse{
		ID:        recastID,
		Message:   "Content recasted successfully",
		CreatedAt: utils.NowRFC3339(),
	})
}

// Quote handles POST /contents/{contentID}/quote
func (h *ContentHandler) Quote(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	var req QuoteContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body: "+err.Error())
		return
	}

	quoteID := uuid.New().String()

	cmd := commands.QuoteContentCommand{
		QuoteID:  quoteID,
		UserID:   userID,
		SourceID: sourceID,
		Payload:  req.Payload,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, CreateContentResponse{
		ID:        quoteID,
		Message:   "Content quoted successfully",
		CreatedAt: utils.NowRFC3339(),
	})
}

// Like handles POST /contents/{contentID}/like
func (h *ContentHandler) Like(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.LikeContentCommand{
		ContentID: contentID,
		UserID:    userID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Liked"})
}

// Unlike handles DELETE /contents/{contentID}/like
func (h *ContentHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := commands.UnlikeContentCommand{
		ContentID: contentID,
		UserID:    userID,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "Unliked"})
}

// ListRevisions handles GET /contents/{contentID}/revisions
func (h *ContentHandler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListRevisionsQuery{
		UserID:    userID,
		ContentID: contentID,
		Page:      common.ExtractPaginationParams(r),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetRevision handles GET /contents/{contentID}/revisions/{seq}
func (h *ContentHandler) GetRevision(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")
	userID, ok := common.GetUserID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil || seq < 1 {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid revision sequence")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetRevisionQuery{
		UserID:    userID,
		ContentID: contentID,
		Seq:       seq,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
