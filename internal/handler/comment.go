package handler

import (
	"net/http"

	"minisocial/internal/httputil"
	"minisocial/internal/model"
	"minisocial/internal/service"
	"minisocial/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// Create handles POST /posts/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := pathID(w, r, "post")
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	comment, err := h.commentService.Create(r.Context(), postID, userID, req.Content)
	if err != nil {
		httputil.WriteServiceError(w, "Create comment", err, "Failed to create comment")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// List handles GET /posts/{id}/comments
// Returns the whole thread, oldest first.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "post")
	if !ok {
		return
	}

	comments, err := h.commentService.ListByPost(r.Context(), postID)
	if err != nil {
		httputil.WriteServiceError(w, "List comments", err, "Failed to list comments")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.CommentListResponse{Comments: comments})
}
