package handler

import (
	"net/http"

	"minisocial/internal/httputil"
	"minisocial/internal/model"
	"minisocial/internal/service"
	"minisocial/internal/transport/http/middleware"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(userService *service.UserService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

// Register handles sign-up
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		httputil.WriteServiceError(w, "Register", err, "Failed to register")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, user)
}

// Login handles user login
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !httputil.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		httputil.WriteServiceError(w, "Login", err, "Failed to login")
		return
	}

	token, err := h.authService.GenerateAccessToken(user.ID)
	if err != nil {
		httputil.WriteServiceError(w, "Login", err, "Failed to generate token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.LoginResponse{
		User:        user,
		AccessToken: token.Token,
		ExpiresIn:   token.ExpiresIn,
	})
}

// Me returns the currently authenticated user
// GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Not authenticated")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		httputil.WriteServiceError(w, "Me", err, "Failed to get user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}
