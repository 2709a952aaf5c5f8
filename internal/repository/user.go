package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/model"
)

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password_hashed, display_name, bio,
		       follower_count, following_count, post_count, created_at`

// Create inserts a new user. u.CreatedAt must be set by the caller.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := r.db.Rebind(`
		INSERT INTO users (username, password_hashed, display_name, bio, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, follower_count, following_count, post_count
	`)

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.PasswordHashed,
		u.DisplayName,
		u.Bio,
		u.CreatedAt,
	)

	err := row.Scan(
		&u.ID,
		&u.FollowerCount,
		&u.FollowingCount,
		&u.PostCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUsernameExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE username = ?`)

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is already taken
func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	query := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`)

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return exists, nil
}

func (r *userRepository) GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error) {
	result := make(map[int64]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT id, username, display_name FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build summaries query: %w", err)
	}

	var users []model.UserSummary
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}

	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// Search matches query as a case-insensitive substring of username or display name.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	searchQuery := r.db.Rebind(`
		SELECT id, username, display_name
		FROM users
		WHERE LOWER(username) LIKE ? ESCAPE '\'
		   OR LOWER(COALESCE(display_name, '')) LIKE ? ESCAPE '\'
		ORDER BY follower_count DESC, id ASC
		LIMIT ?
	`)

	pattern := containsPattern(query)
	users := []model.UserSummary{}
	err := r.db.SelectContext(ctx, &users, searchQuery, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

func (r *userRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	query := tx.Rebind(`UPDATE users SET follower_count = follower_count + ? WHERE id = ?`)
	_, err := tx.ExecContext(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to increment follower count: %w", err)
	}
	return nil
}

func (r *userRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	query := tx.Rebind(`UPDATE users SET following_count = following_count + ? WHERE id = ?`)
	_, err := tx.ExecContext(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to increment following count: %w", err)
	}
	return nil
}

func (r *userRepository) IncrementPostCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	query := tx.Rebind(`UPDATE users SET post_count = post_count + ? WHERE id = ?`)
	_, err := tx.ExecContext(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to increment post count: %w", err)
	}
	return nil
}
