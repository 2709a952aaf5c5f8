package handler

import (
	"net/http"

	"minisocial/internal/httputil"
	"minisocial/internal/model"
	"minisocial/internal/service"
	"minisocial/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// Create handles POST /posts
// Creates a new post for the authenticated user.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req)
	if err != nil {
		httputil.WriteServiceError(w, "Create post", err, "Failed to create post")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// GetByID handles GET /posts/{id}
// Returns a single post with author, likers and the viewer's like flag.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "post")
	if !ok {
		return
	}

	post, err := h.postService.GetByID(r.Context(), postID, viewerID(r))
	if err != nil {
		httputil.WriteServiceError(w, "Get post", err, "Failed to get post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// ToggleLike handles POST /posts/{id}/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := pathID(w, r, "post")
	if !ok {
		return
	}

	resp, err := h.postService.ToggleLike(r.Context(), postID, userID)
	if err != nil {
		httputil.WriteServiceError(w, "ToggleLike", err, "Failed to update like")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
