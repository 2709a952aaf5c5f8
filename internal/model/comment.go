package model

import (
	"time"
)

// Comment represents a comment on a post.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	PostID    int64        `db:"post_id" json:"post_id"`
	UserID    int64        `db:"user_id" json:"-"`
	Content   string       `db:"content" json:"content"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentListResponse wraps a post's full comment thread.
type CommentListResponse struct {
	Comments []Comment `json:"comments"`
}

// Comment constraints
const (
	MaxCommentLength = 300
)

// Comment errors
var (
	ErrContentRequired = newError(ErrValidation, "comment content is required")
	ErrContentTooLong  = newError(ErrValidation, "comment content too long")
)
