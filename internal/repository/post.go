package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/cache"
	"minisocial/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, content, like_count, comment_count, created_at`

// Create inserts a post inside the caller's transaction. post.CreatedAt must be set.
func (r *postRepository) Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	query := tx.Rebind(`
		INSERT INTO posts (user_id, content, created_at)
		VALUES (?, ?, ?)
		RETURNING id, like_count, comment_count
	`)
	row := tx.QueryRowxContext(ctx, query, post.UserID, post.Content, post.CreatedAt)
	if err := row.Scan(&post.ID, &post.LikeCount, &post.CommentCount); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post.
func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := r.db.Rebind(`SELECT ` + postColumns + ` FROM posts WHERE id = ?`)

	var post model.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

// GetByIDs fetches multiple posts by id (used to hydrate cached timelines).
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+postColumns+` FROM posts WHERE id IN (?)`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("build get posts query: %w", err)
	}

	var posts []model.Post
	if err := r.db.SelectContext(ctx, &posts, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)`), postID)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

// List returns the global timeline page after cursor, newest first.
// Equal timestamps are ordered by id so pages never skip or repeat a post.
func (r *postRepository) List(ctx context.Context, cursor *model.PostCursor, limit int) ([]model.Post, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT ` + postColumns + `
			FROM posts
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		`
		args = []interface{}{limit}
	} else {
		query = `
			SELECT ` + postColumns + `
			FROM posts
			WHERE (created_at, id) < (?, ?)
			ORDER BY created_at DESC, id DESC
			LIMIT ?
		`
		args = []interface{}{cursor.CreatedAt, cursor.ID, limit}
	}

	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListRecentScores returns the newest posts as (id, unix micro) pairs for cache warming.
func (r *postRepository) ListRecentScores(ctx context.Context, limit int) ([]cache.PostScore, error) {
	query := r.db.Rebind(`
		SELECT id, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`)

	var rows []struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}

	scores := make([]cache.PostScore, len(rows))
	for i, row := range rows {
		scores[i] = cache.PostScore{PostID: row.ID, Timestamp: row.CreatedAt.UnixMicro()}
	}
	return scores, nil
}

func (r *postRepository) GetLikerIDs(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT post_id, user_id
		FROM post_likes
		WHERE post_id IN (?)
		ORDER BY post_id, created_at, user_id
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("build likers query: %w", err)
	}

	var rows []struct {
		PostID int64 `db:"post_id"`
		UserID int64 `db:"user_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get likers: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.UserID)
	}
	return result, nil
}

// CheckLikes checks which posts the user has liked.
// Returns a map of post_id -> liked (true/false).
func (r *postRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	if len(postIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query, args, err := sqlx.In(`SELECT post_id FROM post_likes WHERE user_id = ? AND post_id IN (?)`, userID, postIDs)
	if err != nil {
		return nil, fmt.Errorf("build check likes query: %w", err)
	}

	var likedIDs []int64
	if err := r.db.SelectContext(ctx, &likedIDs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range postIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}

	return result, nil
}

// Like inserts a like row; false means the row already existed.
func (r *postRepository) Like(ctx context.Context, tx *sqlx.Tx, postID, userID int64, createdAt time.Time) (bool, error) {
	query := tx.Rebind(`
		INSERT INTO post_likes (post_id, user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`)
	result, err := tx.ExecContext(ctx, query, postID, userID, createdAt)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Unlike deletes a like row; false means there was nothing to delete.
func (r *postRepository) Unlike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	query := tx.Rebind(`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`)
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// IncrementLikeCount applies delta and returns the new counter value.
func (r *postRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error) {
	query := tx.Rebind(`UPDATE posts SET like_count = like_count + ? WHERE id = ? RETURNING like_count`)
	var count int
	err := tx.GetContext(ctx, &count, query, delta, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment like count: %w", err)
	}
	return count, nil
}

func (r *postRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	query := tx.Rebind(`UPDATE posts SET comment_count = comment_count + ? WHERE id = ?`)
	_, err := tx.ExecContext(ctx, query, delta, postID)
	if err != nil {
		return fmt.Errorf("increment comment count: %w", err)
	}
	return nil
}
