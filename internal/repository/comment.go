package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment inside the caller's transaction so the post's
// comment counter moves with it. comment.CreatedAt must be set.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) error {
	query := tx.Rebind(`
		INSERT INTO post_comments (post_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	err := tx.GetContext(ctx, &comment.ID, query, comment.PostID, comment.UserID, comment.Content, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListByPostID returns every comment on a post, oldest first.
func (r *commentRepository) ListByPostID(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := r.db.Rebind(`
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at,
		       u.id AS "author.id", u.username AS "author.username",
		       u.display_name AS "author.display_name"
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ?
		ORDER BY c.created_at ASC, c.id ASC
	`)

	comments := []model.Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
