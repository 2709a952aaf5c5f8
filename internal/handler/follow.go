package handler

import (
	"context"
	"net/http"

	"minisocial/internal/httputil"
	"minisocial/internal/model"
	"minisocial/internal/service"
	"minisocial/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
	}
}

// Toggle follows or unfollows the user in the path.
// POST /users/{id}/follow
func (h *FollowHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	followerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID, ok := pathID(w, r, "user")
	if !ok {
		return
	}

	following, err := h.followService.ToggleFollow(r.Context(), followerID, followeeID)
	if err != nil {
		httputil.WriteServiceError(w, "ToggleFollow", err, "Failed to update follow")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ToggleFollowResponse{IsFollowing: following})
}

func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "GetFollowers", h.followService.GetFollowers)
}

func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "GetFollowing", h.followService.GetFollowing)
}

type listFunc func(ctx context.Context, userID int64, cursor *string, limit int, viewerID *int64) (*model.FollowListResponse, error)

// list serves one paginated side of the follow graph.
// Query params:
//   - cursor: opaque cursor from a previous response
//   - limit: users per page (default 20, max 100)
func (h *FollowHandler) list(w http.ResponseWriter, r *http.Request, op string, fetch listFunc) {
	userID, ok := pathID(w, r, "user")
	if !ok {
		return
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	result, err := fetch(r.Context(), userID, cursor, limit, viewerID(r))
	if err != nil {
		httputil.WriteServiceError(w, op, err, "Failed to fetch users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
