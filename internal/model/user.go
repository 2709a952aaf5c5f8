package model

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordHashed string    `db:"password_hashed" json:"-"` // "-" hides from JSON output
	DisplayName    *string   `db:"display_name" json:"display_name"`
	Bio            *string   `db:"bio" json:"bio"`
	FollowerCount  int       `db:"follower_count" json:"follower_count"`
	FollowingCount int       `db:"following_count" json:"following_count"`
	PostCount      int       `db:"post_count" json:"post_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Summary returns the lightweight identity embedded in other views.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}

// RegisterRequest represents the data needed to register a new user
type RegisterRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=30,username"`
	Password    string  `json:"password" validate:"required,min=6,max=72"`
	DisplayName string  `json:"display_name" validate:"max=50"`
	Bio         *string `json:"bio" validate:"omitempty,max=160"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Profile is the read-only composite returned by GET /users/{id}.
type Profile struct {
	*User
	Followers   []UserSummary `json:"followers"`
	Following   []UserSummary `json:"following"`
	IsFollowing bool          `json:"is_following"`
}

// SearchResponse wraps user search results.
type SearchResponse struct {
	Users []UserSummary `json:"users"`
}

// Search limits
const (
	SearchDefaultLimit = 10
	SearchMaxLimit     = 50
)

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = newError(ErrNotFound, "user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = newError(ErrConflict, "username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = newError(ErrUnauthenticated, "invalid credentials")
)
