package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"minisocial/internal/httputil"
	"minisocial/internal/transport/http/middleware"
)

// pathID parses the {id} URL param, writing a 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteBadRequest(w, "Invalid "+what+" ID")
		return 0, false
	}
	return id, true
}

// queryLimit reads ?limit=. Absent means 0, which services treat as their default.
func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		httputil.WriteBadRequest(w, "Limit must be a positive integer")
		return 0, false
	}
	return limit, true
}

// viewerID returns the authenticated caller, or nil for anonymous requests.
func viewerID(r *http.Request) *int64 {
	if id, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}
