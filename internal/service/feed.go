package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"minisocial/internal/cache"
	"minisocial/internal/metrics"
	"minisocial/internal/model"
	"minisocial/internal/repository"
)

type FeedService struct {
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
	feedCache cache.FeedCache // nil when Redis is not configured
}

func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	feedCache cache.FeedCache,
) *FeedService {
	return &FeedService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		feedCache: feedCache,
	}
}

// GetFeed returns the global timeline, newest first, with keyset pagination.
//
// Flow:
// 1. Normalize limit and decode the cursor
// 2. Fetch limit+1 posts (first page from the timeline cache when possible)
// 3. Hydrate authors, likers and the viewer's like flag in batch
// 4. Build the next cursor from the last returned post
func (s *FeedService) GetFeed(ctx context.Context, viewerID *int64, cursor *string, limit int) (*model.FeedResponse, error) {
	startTime := time.Now()

	if limit <= 0 {
		limit = model.FeedDefaultLimit
	}
	if limit > model.FeedMaxLimit {
		limit = model.FeedMaxLimit
	}

	var after *model.PostCursor
	if cursor != nil && *cursor != "" {
		at, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, err
		}
		after = &model.PostCursor{CreatedAt: at, ID: id}
	}

	var posts []model.Post
	var err error
	if after == nil {
		posts, err = s.firstPage(ctx, limit+1)
	} else {
		posts, err = s.postRepo.List(ctx, after, limit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	if err := hydratePosts(ctx, s.postRepo, s.userRepo, posts, viewerID); err != nil {
		return nil, err
	}

	var nextCursor *string
	if hasMore {
		last := posts[len(posts)-1]
		c := formatCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	log.Printf("[FeedService] GetFeed OK: posts=%d hasMore=%v duration=%v",
		len(posts), hasMore, time.Since(startTime))

	return &model.FeedResponse{
		Posts:      posts,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// firstPage serves the newest n posts, preferring the timeline cache.
// Any cache problem falls through to the database.
func (s *FeedService) firstPage(ctx context.Context, n int) ([]model.Post, error) {
	if s.feedCache == nil || n > cache.FeedCacheCap {
		return s.postRepo.List(ctx, nil, n)
	}

	postIDs, ready, err := s.feedCache.GetLatest(ctx, n)
	switch {
	case err != nil:
		metrics.FeedCacheTotal.WithLabelValues(metrics.CacheError).Inc()
		log.Printf("[FeedService] Cache read failed, using DB: %v", err)
		return s.postRepo.List(ctx, nil, n)

	case !ready:
		metrics.FeedCacheTotal.WithLabelValues(metrics.CacheMiss).Inc()
		log.Printf("[FeedService] Cache miss, warming...")
		if err := s.warmCache(ctx); err != nil {
			log.Printf("[FeedService] Cache warm failed: %v", err)
		}
		return s.postRepo.List(ctx, nil, n)
	}

	metrics.FeedCacheTotal.WithLabelValues(metrics.CacheHit).Inc()

	posts, err := s.postRepo.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}
	sortNewestFirst(posts)
	return posts, nil
}

// warmCache loads the newest posts from the DB into the timeline cache.
func (s *FeedService) warmCache(ctx context.Context) error {
	startTime := time.Now()

	scores, err := s.postRepo.ListRecentScores(ctx, cache.FeedCacheCap)
	if err != nil {
		return fmt.Errorf("list recent posts: %w", err)
	}

	if err := s.feedCache.WarmCache(ctx, scores); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedService] Cache warmed: posts=%d duration=%v", len(scores), time.Since(startTime))
	return nil
}

// hydratePosts attaches author summaries, liker ids and the viewer's like
// flag to posts in place. Each concern is one batch query regardless of page size.
func hydratePosts(
	ctx context.Context,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	posts []model.Post,
	viewerID *int64,
) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]int64, len(posts))
	authorIDSet := make(map[int64]struct{})
	for i, p := range posts {
		postIDs[i] = p.ID
		authorIDSet[p.UserID] = struct{}{}
	}
	authorIDs := make([]int64, 0, len(authorIDSet))
	for id := range authorIDSet {
		authorIDs = append(authorIDs, id)
	}

	authors, err := userRepo.GetSummaries(ctx, authorIDs)
	if err != nil {
		return fmt.Errorf("get authors: %w", err)
	}

	likers, err := postRepo.GetLikerIDs(ctx, postIDs)
	if err != nil {
		return fmt.Errorf("get likers: %w", err)
	}

	var liked map[int64]bool
	if viewerID != nil {
		liked, err = postRepo.CheckLikes(ctx, *viewerID, postIDs)
		if err != nil {
			log.Printf("[FeedService] Failed to check like status: %v", err)
		}
	}

	for i := range posts {
		p := &posts[i]
		if author, ok := authors[p.UserID]; ok {
			p.Author = &author
		}
		p.Likes = likers[p.ID]
		if p.Likes == nil {
			p.Likes = []int64{}
		}
		p.IsLiked = liked[p.ID]
	}

	return nil
}

func sortNewestFirst(posts []model.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}
