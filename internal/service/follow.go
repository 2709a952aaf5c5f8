package service

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"minisocial/internal/metrics"
	"minisocial/internal/model"
	"minisocial/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	db         *sqlx.DB
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		db:         db,
	}
}

// ToggleFollow flips whether actor follows target and returns the new state.
// The edge row and both counters change in one transaction, so the follower
// and following views can never disagree.
func (s *FollowService) ToggleFollow(ctx context.Context, actorID, targetID int64) (bool, error) {
	if actorID <= 0 {
		return false, model.ErrActorRequired
	}
	if actorID == targetID {
		return false, model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	var following bool
	err := runToggle(ctx, s.db, metrics.KindFollow, func(tx *sqlx.Tx) error {
		removed, err := s.followRepo.Delete(ctx, tx, actorID, targetID)
		if err != nil {
			return err
		}

		delta := -1
		if !removed {
			inserted, err := s.followRepo.Create(ctx, tx, actorID, targetID, now())
			if err != nil {
				return err
			}
			if !inserted {
				return errToggleRaced
			}
			delta = 1
		}

		if err := s.userRepo.IncrementFollowerCount(ctx, tx, targetID, delta); err != nil {
			return err
		}
		if err := s.userRepo.IncrementFollowingCount(ctx, tx, actorID, delta); err != nil {
			return err
		}

		following = delta > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	metrics.ToggleTotal.WithLabelValues(metrics.KindFollow, metrics.ToggleState(following)).Inc()
	log.Printf("[FollowService] Toggled follow: follower=%d followee=%d following=%v",
		actorID, targetID, following)

	return following, nil
}

// Edges returns both sides of a user's follow graph.
func (s *FollowService) Edges(ctx context.Context, userID int64) (*model.Edges, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.loadEdges(ctx, userID)
}

// loadEdges fetches followers and following concurrently. The caller has
// already established that the user exists.
func (s *FollowService) loadEdges(ctx context.Context, userID int64) (*model.Edges, error) {
	var edges model.Edges

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		followers, err := s.followRepo.ListFollowers(gctx, userID)
		edges.Followers = followers
		return err
	})
	g.Go(func() error {
		following, err := s.followRepo.ListFollowing(gctx, userID)
		edges.Following = following
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &edges, nil
}

// IsFollowing reports whether viewer follows userID. Anonymous viewers and
// users looking at themselves always get false.
func (s *FollowService) IsFollowing(ctx context.Context, viewerID *int64, userID int64) bool {
	if viewerID == nil || *viewerID == userID {
		return false
	}

	following, err := s.followRepo.Exists(ctx, *viewerID, userID)
	if err != nil {
		log.Printf("[FollowService] Failed to check follow status: viewer=%d user=%d err=%v",
			*viewerID, userID, err)
		return false
	}
	return following
}

// followPageFunc is one direction of FollowRepository's paginated lists.
type followPageFunc func(ctx context.Context, userID int64, cursor *model.FollowCursor, limit int) ([]model.UserSummary, *model.FollowCursor, error)

// GetFollowers retrieves users who follow the specified user with cursor-based pagination.
//
// When cursor is nil the page starts at the newest follower; otherwise it
// continues strictly after the (created_at, user id) position it encodes.
// limit <= 0 means FollowListDefaultLimit and larger values are capped at
// FollowListMaxLimit, the same policy as the feed.
func (s *FollowService) GetFollowers(ctx context.Context, userID int64, cursor *string, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	return s.listPage(ctx, userID, cursor, limit, viewerID, s.followRepo.GetFollowers)
}

// GetFollowing retrieves users that the specified user follows with cursor-based pagination.
// See GetFollowers for the cursor semantics.
func (s *FollowService) GetFollowing(ctx context.Context, userID int64, cursor *string, limit int, viewerID *int64) (*model.FollowListResponse, error) {
	return s.listPage(ctx, userID, cursor, limit, viewerID, s.followRepo.GetFollowing)
}

func (s *FollowService) listPage(ctx context.Context, userID int64, cursor *string, limit int, viewerID *int64, fetch followPageFunc) (*model.FollowListResponse, error) {
	if limit <= 0 {
		limit = model.FollowListDefaultLimit
	}
	if limit > model.FollowListMaxLimit {
		limit = model.FollowListMaxLimit
	}

	var after *model.FollowCursor
	if cursor != nil && *cursor != "" {
		at, id, err := parseCursor(*cursor)
		if err != nil {
			return nil, err
		}
		after = &model.FollowCursor{CreatedAt: at, UserID: id}
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	users, next, err := fetch(ctx, userID, after, limit)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		users = s.enrichWithFollowStatus(ctx, *viewerID, users)
	}

	resp := &model.FollowListResponse{
		Users:   users,
		HasMore: next != nil,
	}
	if next != nil {
		c := formatCursor(next.CreatedAt, next.UserID)
		resp.NextCursor = &c
	}
	return resp, nil
}

// enrichWithFollowStatus sets IsFollowing on each user with one batch query.
// If the batch check fails the users are returned with is_following=false
// rather than failing the whole request.
func (s *FollowService) enrichWithFollowStatus(ctx context.Context, viewerID int64, users []model.UserSummary) []model.UserSummary {
	if len(users) == 0 {
		return users
	}

	userIDs := make([]int64, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	followMap, err := s.followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		log.Printf("[FollowService] Failed to check follow status: viewer=%d err=%v", viewerID, err)
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}

	return users
}
