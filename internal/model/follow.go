package model

import (
	"time"
)

type Follow struct {
	FollowerID int64     `db:"follower_id" json:"follower_id"`
	FolloweeID int64     `db:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type UserSummary struct {
	ID          int64   `db:"id" json:"id"`
	Username    string  `db:"username" json:"username"`
	DisplayName *string `db:"display_name" json:"display_name"`
	IsFollowing bool    `json:"is_following"`
}

// Edges holds both sides of a user's follow graph, newest edge first.
type Edges struct {
	Followers []UserSummary `json:"followers"`
	Following []UserSummary `json:"following"`
}

// FollowCursor is a keyset position in (created_at DESC, user id DESC) order
// over one side of a user's follow edges.
type FollowCursor struct {
	CreatedAt time.Time
	UserID    int64
}

type FollowListResponse struct {
	Users      []UserSummary `json:"users"`
	NextCursor *string       `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}

type ToggleFollowResponse struct {
	IsFollowing bool `json:"is_following"`
}

// Follow list page sizes
const (
	FollowListDefaultLimit = 20
	FollowListMaxLimit     = 100
)

var (
	ErrCannotFollowSelf = newError(ErrInvalidOperation, "cannot follow yourself")
)
