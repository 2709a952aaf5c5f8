package handler

import (
	"net/http"

	"minisocial/internal/httputil"
	"minisocial/internal/service"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /feed and GET /posts
// Query params:
//   - cursor: opaque cursor from a previous response
//   - limit: posts per page (default 50, max 100)
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}

	feed, err := h.feedService.GetFeed(r.Context(), viewerID(r), cursor, limit)
	if err != nil {
		httputil.WriteServiceError(w, "GetFeed", err, "Failed to get feed")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, feed)
}
