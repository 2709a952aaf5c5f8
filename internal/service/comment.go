package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/model"
	"minisocial/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	db          *sqlx.DB
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		db:          db,
	}
}

// Create adds a comment to a post and increments its comment_count.
// Nothing is written unless every check passes.
func (s *CommentService) Create(ctx context.Context, postID, actorID int64, content string) (*model.Comment, error) {
	if actorID <= 0 {
		return nil, model.ErrActorRequired
	}

	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if utf8.RuneCountInString(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}

	author, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:    postID,
		UserID:    actorID,
		Content:   content,
		CreatedAt: now(),
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.commentRepo.Create(ctx, tx, comment); err != nil {
			return err
		}
		return s.postRepo.IncrementCommentCount(ctx, tx, postID, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	summary := author.Summary()
	comment.Author = &summary

	log.Printf("[CommentService] User %d commented on post %d", actorID, postID)
	return comment, nil
}

// ListByPost returns a post's whole thread, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	return s.commentRepo.ListByPostID(ctx, postID)
}
