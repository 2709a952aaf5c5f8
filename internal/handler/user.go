package handler

import (
	"net/http"

	"minisocial/internal/httputil"
	"minisocial/internal/model"
	"minisocial/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile handles GET /users/{id}
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "user")
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID, viewerID(r))
	if err != nil {
		httputil.WriteServiceError(w, "GetProfile", err, "Failed to get profile")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

// Search handles GET /users/search?q=&limit=
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	users, err := h.userService.Search(r.Context(), r.URL.Query().Get("q"), limit, viewerID(r))
	if err != nil {
		httputil.WriteServiceError(w, "Search", err, "Failed to search users")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.SearchResponse{Users: users})
}
