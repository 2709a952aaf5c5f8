package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64, createdAt time.Time) (bool, error) {
	query := tx.Rebind(`
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`)
	result, err := tx.ExecContext(ctx, query, followerID, followeeID, createdAt)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	query := tx.Rebind(`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`)
	result, err := tx.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?)`)
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// ListFollowers returns every follower of userID, newest edge first.
func (r *followRepository) ListFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	query := r.db.Rebind(`
		SELECT u.id, u.username, u.display_name
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = ?
		ORDER BY f.created_at DESC, f.follower_id DESC
	`)

	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return users, nil
}

// ListFollowing returns every user that userID follows, newest edge first.
func (r *followRepository) ListFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	query := r.db.Rebind(`
		SELECT u.id, u.username, u.display_name
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = ?
		ORDER BY f.created_at DESC, f.followee_id DESC
	`)

	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return users, nil
}

// GetFollowers retrieves users who follow the specified user with cursor-based pagination.
//
//   - cursor == nil: start from the newest follow edge
//   - cursor != nil: only edges strictly after (created_at, follower id) in
//     newest-first order, so followers sharing a timestamp are never skipped
//   - fetch limit+1; the extra row means there is another page and the last
//     kept row becomes nextCursor
func (r *followRepository) GetFollowers(ctx context.Context, userID int64, cursor *model.FollowCursor, limit int) ([]model.UserSummary, *model.FollowCursor, error) {
	return r.page(ctx, "follower_id", "followee_id", userID, cursor, limit)
}

// GetFollowing is GetFollowers for the other direction of the edge.
func (r *followRepository) GetFollowing(ctx context.Context, userID int64, cursor *model.FollowCursor, limit int) ([]model.UserSummary, *model.FollowCursor, error) {
	return r.page(ctx, "followee_id", "follower_id", userID, cursor, limit)
}

// page lists the users on the joinCol side of edges whose filterCol is userID.
// Column names are fixed by the two callers above, never user input.
func (r *followRepository) page(ctx context.Context, joinCol, filterCol string, userID int64, cursor *model.FollowCursor, limit int) ([]model.UserSummary, *model.FollowCursor, error) {
	where := fmt.Sprintf("f.%s = ?", filterCol)
	args := []interface{}{userID}
	if cursor != nil {
		where += fmt.Sprintf(" AND (f.created_at, f.%s) < (?, ?)", joinCol)
		args = append(args, cursor.CreatedAt, cursor.UserID)
	}
	args = append(args, limit+1)

	query := fmt.Sprintf(`
		SELECT u.id, u.username, u.display_name, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.%s
		WHERE %s
		ORDER BY f.created_at DESC, f.%s DESC
		LIMIT ?
	`, joinCol, where, joinCol)

	type userWithTime struct {
		model.UserSummary
		CreatedAt time.Time `db:"created_at"`
	}

	var results []userWithTime
	err := r.db.SelectContext(ctx, &results, r.db.Rebind(query), args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to page follows: %w", err)
	}

	var nextCursor *model.FollowCursor
	if len(results) > limit {
		results = results[:limit]
		last := results[len(results)-1]
		nextCursor = &model.FollowCursor{CreatedAt: last.CreatedAt, UserID: last.ID}
	}

	users := make([]model.UserSummary, 0, len(results))
	for _, result := range results {
		users = append(users, result.UserSummary)
	}

	return users, nextCursor, nil
}

func (r *followRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if len(followeeIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query, args, err := sqlx.In(`SELECT followee_id FROM follows WHERE follower_id = ? AND followee_id IN (?)`, followerID, followeeIDs)
	if err != nil {
		return nil, fmt.Errorf("build check follows query: %w", err)
	}

	var followedIDs []int64
	if err := r.db.SelectContext(ctx, &followedIDs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to check follows: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range followeeIDs {
		result[id] = false
	}
	for _, id := range followedIDs {
		result[id] = true
	}

	return result, nil
}
