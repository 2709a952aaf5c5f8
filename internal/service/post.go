package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/cache"
	"minisocial/internal/metrics"
	"minisocial/internal/model"
	"minisocial/internal/repository"
)

type PostService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	feedCache cache.FeedCache // nil when Redis is not configured
	db        *sqlx.DB
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	feedCache cache.FeedCache,
	db *sqlx.DB,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		feedCache: feedCache,
		db:        db,
	}
}

// Create stores a post, bumps the author's post_count and writes the post
// through to the timeline cache.
func (s *PostService) Create(ctx context.Context, actorID int64, req model.CreatePostRequest) (*model.Post, error) {
	if actorID <= 0 {
		return nil, model.ErrActorRequired
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrPostContentRequired
	}
	if utf8.RuneCountInString(content) > model.MaxPostContentLength {
		return nil, model.ErrPostContentTooLong
	}

	author, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		UserID:    actorID,
		Content:   content,
		CreatedAt: now(),
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.postRepo.Create(ctx, tx, post); err != nil {
			return err
		}
		return s.userRepo.IncrementPostCount(ctx, tx, actorID, 1)
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	log.Printf("[PostService] User %d created post %d", actorID, post.ID)

	if s.feedCache != nil {
		if err := s.feedCache.AddPost(ctx, post.ID, post.CreatedAt.UnixMicro()); err != nil {
			// The timeline must never miss a committed post; drop it so the next read re-warms.
			log.Printf("[PostService] Failed to cache post %d, invalidating timeline: %v", post.ID, err)
			if err := s.feedCache.Invalidate(ctx); err != nil {
				log.Printf("[PostService] Failed to invalidate timeline: %v", err)
			}
		}
	}

	summary := author.Summary()
	post.Author = &summary
	post.Likes = []int64{}

	return post, nil
}

// GetByID retrieves a single post with author, likers and the viewer's like flag.
func (s *PostService) GetByID(ctx context.Context, postID int64, viewerID *int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	posts := []model.Post{*post}
	if err := hydratePosts(ctx, s.postRepo, s.userRepo, posts, viewerID); err != nil {
		return nil, err
	}

	return &posts[0], nil
}

// ToggleLike flips actor's like on a post. The like row and like_count change
// together, and the returned count is the one written by this transaction.
func (s *PostService) ToggleLike(ctx context.Context, postID, actorID int64) (*model.LikeResponse, error) {
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

	var resp model.LikeResponse
	err = runToggle(ctx, s.db, metrics.KindLike, func(tx *sqlx.Tx) error {
		removed, err := s.postRepo.Unlike(ctx, tx, postID, actorID)
		if err != nil {
			return err
		}

		delta := -1
		if !removed {
			inserted, err := s.postRepo.Like(ctx, tx, postID, actorID, now())
			if err != nil {
				return err
			}
			if !inserted {
				return errToggleRaced
			}
			delta = 1
		}

		count, err := s.postRepo.IncrementLikeCount(ctx, tx, postID, delta)
		if err != nil {
			return err
		}

		resp = model.LikeResponse{Liked: delta > 0, LikeCount: count}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ToggleTotal.WithLabelValues(metrics.KindLike, metrics.ToggleState(resp.Liked)).Inc()
	log.Printf("[PostService] User %d toggled like on post %d: liked=%v count=%d",
		actorID, postID, resp.Liked, resp.LikeCount)

	return &resp, nil
}
