package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/cache"
	"minisocial/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// GetSummaries resolves ids to identity summaries; unknown ids are absent from the map.
	GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error)
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementPostCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
}

type FollowRepository interface {
	// Create and Delete report whether a row was actually written.
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64, createdAt time.Time) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	ListFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error)
	ListFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error)
	// GetFollowers and GetFollowing page strictly after cursor in (created_at DESC, user id DESC) order.
	GetFollowers(ctx context.Context, userID int64, cursor *model.FollowCursor, limit int) ([]model.UserSummary, *model.FollowCursor, error)
	GetFollowing(ctx context.Context, userID int64, cursor *model.FollowCursor, limit int) ([]model.UserSummary, *model.FollowCursor, error)
	CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)
}

type PostRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	// GetByIDs returns the posts that exist, in no particular order.
	GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error)
	Exists(ctx context.Context, postID int64) (bool, error)
	// List returns up to limit posts strictly after cursor in (created_at DESC, id DESC) order.
	List(ctx context.Context, cursor *model.PostCursor, limit int) ([]model.Post, error)
	ListRecentScores(ctx context.Context, limit int) ([]cache.PostScore, error)
	// GetLikerIDs returns liker ids per post, oldest like first.
	GetLikerIDs(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
	// CheckLikes checks which posts the user has liked
	CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error)
	// Like and Unlike report whether a row was actually written.
	Like(ctx context.Context, tx *sqlx.Tx, postID, userID int64, createdAt time.Time) (bool, error)
	Unlike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error)
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) error
	// ListByPostID returns the whole thread, oldest first, with authors joined.
	ListByPostID(ctx context.Context, postID int64) ([]model.Comment, error)
}
