package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"minisocial/internal/model"
	"minisocial/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo    repository.UserRepository
	follows *FollowService
}

func NewUserService(repo repository.UserRepository, follows *FollowService) *UserService {
	return &UserService{
		repo:    repo,
		follows: follows,
	}
}

// Register creates a new user account. Request shape is validated by the
// handler; this enforces what needs the store.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", model.ErrValidation)
	}

	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", model.ErrValidation)
	}
	// bcrypt only looks at the first 72 bytes
	if len(req.Password) > 72 {
		return nil, fmt.Errorf("%w: password must be at most 72 bytes", model.ErrValidation)
	}

	// Check if username already exists
	exists, err := s.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       username,
		PasswordHashed: string(hashedPassword),
		CreatedAt:      now(),
	}

	if name := strings.TrimSpace(req.DisplayName); name != "" {
		user.DisplayName = &name
	}
	if req.Bio != nil {
		if bio := strings.TrimSpace(*req.Bio); bio != "" {
			user.Bio = &bio
		}
	}

	// Save to database; a concurrent registration can still lose the unique index race
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login authenticates a user with username and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		// Don't reveal whether username exists or not
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetProfile assembles the read-only profile view: identity and stats,
// both edge lists, and whether the viewer follows this user.
func (s *UserService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*model.Profile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	edges, err := s.follows.loadEdges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	return &model.Profile{
		User:        user,
		Followers:   edges.Followers,
		Following:   edges.Following,
		IsFollowing: s.follows.IsFollowing(ctx, viewerID, userID),
	}, nil
}

// Search finds users whose username or display name contains query.
// A blank query matches nobody and never reaches the store.
func (s *UserService) Search(ctx context.Context, query string, limit int, viewerID *int64) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.UserSummary{}, nil
	}

	if limit <= 0 {
		limit = model.SearchDefaultLimit
	}
	if limit > model.SearchMaxLimit {
		limit = model.SearchMaxLimit
	}

	users, err := s.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.follows.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	return users, nil
}
