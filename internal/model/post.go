package model

import (
	"time"
)

// Post represents a user's post with its metadata.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Content      string    `db:"content" json:"content"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`

	// Joined fields (not in posts table)
	Author  *UserSummary `json:"author,omitempty"`
	Likes   []int64      `json:"likes"`
	IsLiked bool         `json:"is_liked"`
}

// PostCursor is a keyset position in (created_at DESC, id DESC) order.
// Pages continue strictly after it.
type PostCursor struct {
	CreatedAt time.Time
	ID        int64
}

// FeedResponse is the paginated feed response.
type FeedResponse struct {
	Posts      []Post  `json:"posts"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// CreatePostRequest is the request body for creating a post.
// Content rules live in PostService.Create, which trims before checking.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// LikeResponse is the post-toggle like state.
type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// Post constants
const (
	MaxPostContentLength = 500

	FeedDefaultLimit = 50
	FeedMaxLimit     = 100
)

// Post errors
var (
	ErrPostNotFound        = newError(ErrNotFound, "post not found")
	ErrPostContentRequired = newError(ErrValidation, "post content is required")
	ErrPostContentTooLong  = newError(ErrValidation, "post content too long")
	ErrInvalidCursor       = newError(ErrValidation, "invalid cursor")
)
