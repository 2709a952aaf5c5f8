package service

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/cache"
	"minisocial/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Services depend on repository INTERFACES, so unit tests swap in mocks whose
// behavior each test sets through function fields. Unset fields fall back to
// a harmless default.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	searchFn           func(ctx context.Context, query string, limit int) ([]model.UserSummary, error)

	// Track calls for assertions
	createCalls []createCall
	searchCalls int
}

type createCall struct {
	User *model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, createCall{User: user})
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, ids []int64) (map[int64]model.UserSummary, error) {
	return map[int64]model.UserSummary{}, nil
}

func (m *mockUserRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	m.searchCalls++
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return []model.UserSummary{}, nil
}

func (m *mockUserRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return nil
}

func (m *mockUserRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return nil
}

func (m *mockUserRepository) IncrementPostCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return nil
}

type mockFollowRepository struct {
	createFn        func(ctx context.Context, followerID, followeeID int64) (bool, error)
	deleteFn        func(ctx context.Context, followerID, followeeID int64) (bool, error)
	existsFn        func(ctx context.Context, followerID, followeeID int64) (bool, error)
	listFollowersFn func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	listFollowingFn func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	checkFollowsFn  func(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error)

	existsCalls int
	createCalls int
	pageCalls   []pageCall
}

type pageCall struct {
	Cursor *model.FollowCursor
	Limit  int
}

func (m *mockFollowRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64, createdAt time.Time) (bool, error) {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	m.existsCalls++
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) ListFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.listFollowersFn != nil {
		return m.listFollowersFn(ctx, userID)
	}
	return []model.UserSummary{}, nil
}

func (m *mockFollowRepository) ListFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.listFollowingFn != nil {
		return m.listFollowingFn(ctx, userID)
	}
	return []model.UserSummary{}, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64, cursor *model.FollowCursor, limit int) ([]model.UserSummary, *model.FollowCursor, error) {
	m.pageCalls = append(m.pageCalls, pageCall{Cursor: cursor, Limit: limit})
	return []model.UserSummary{}, nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64, cursor *model.FollowCursor, limit int) ([]model.UserSummary, *model.FollowCursor, error) {
	m.pageCalls = append(m.pageCalls, pageCall{Cursor: cursor, Limit: limit})
	return []model.UserSummary{}, nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followeeIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followeeIDs)
	}
	return map[int64]bool{}, nil
}

// mockPostRepository covers the like toggle. The post always exists and the
// like count follows the deltas applied to it.
type mockPostRepository struct {
	likeFn   func(ctx context.Context, postID, userID int64) (bool, error)
	unlikeFn func(ctx context.Context, postID, userID int64) (bool, error)

	likeCount int
	likeCalls int
}

func (m *mockPostRepository) Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	return &model.Post{ID: postID, LikeCount: m.likeCount}, nil
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	return []model.Post{}, nil
}

func (m *mockPostRepository) Exists(ctx context.Context, postID int64) (bool, error) {
	return true, nil
}

func (m *mockPostRepository) List(ctx context.Context, cursor *model.PostCursor, limit int) ([]model.Post, error) {
	return []model.Post{}, nil
}

func (m *mockPostRepository) ListRecentScores(ctx context.Context, limit int) ([]cache.PostScore, error) {
	return []cache.PostScore{}, nil
}

func (m *mockPostRepository) GetLikerIDs(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	return map[int64][]int64{}, nil
}

func (m *mockPostRepository) CheckLikes(ctx context.Context, userID int64, postIDs []int64) (map[int64]bool, error) {
	return map[int64]bool{}, nil
}

func (m *mockPostRepository) Like(ctx context.Context, tx *sqlx.Tx, postID, userID int64, createdAt time.Time) (bool, error) {
	m.likeCalls++
	if m.likeFn != nil {
		return m.likeFn(ctx, postID, userID)
	}
	return true, nil
}

func (m *mockPostRepository) Unlike(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	if m.unlikeFn != nil {
		return m.unlikeFn(ctx, postID, userID)
	}
	return false, nil
}

func (m *mockPostRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) (int, error) {
	m.likeCount += delta
	return m.likeCount, nil
}

func (m *mockPostRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	return nil
}

// =============================================================================
// FAKE TIMELINE CACHE
// =============================================================================

// fakeFeedCache is an in-memory cache.FeedCache with switchable failures.
type fakeFeedCache struct {
	ready  bool
	scores map[int64]int64 // post id -> unix micro

	addErr error
	getErr error

	addCalls        int
	warmCalls       int
	invalidateCalls int
}

var _ cache.FeedCache = (*fakeFeedCache)(nil)

func newFakeFeedCache() *fakeFeedCache {
	return &fakeFeedCache{scores: make(map[int64]int64)}
}

func (f *fakeFeedCache) AddPost(ctx context.Context, postID int64, timestamp int64) error {
	f.addCalls++
	if f.addErr != nil {
		return f.addErr
	}
	f.scores[postID] = timestamp
	return nil
}

func (f *fakeFeedCache) GetLatest(ctx context.Context, limit int) ([]int64, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	if !f.ready {
		return nil, false, nil
	}

	ids := make([]int64, 0, len(f.scores))
	for id := range f.scores {
		ids = append(ids, id)
	}
	// newest first, ties by id descending
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && f.less(ids[j-1], ids[j]); j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, true, nil
}

func (f *fakeFeedCache) less(a, b int64) bool {
	if f.scores[a] != f.scores[b] {
		return f.scores[a] < f.scores[b]
	}
	return a < b
}

func (f *fakeFeedCache) WarmCache(ctx context.Context, posts []cache.PostScore) error {
	f.warmCalls++
	for _, p := range posts {
		f.scores[p.PostID] = p.Timestamp
	}
	f.ready = true
	return nil
}

func (f *fakeFeedCache) Invalidate(ctx context.Context) error {
	f.invalidateCalls++
	f.scores = make(map[int64]int64)
	f.ready = false
	return nil
}

func (f *fakeFeedCache) Size(ctx context.Context) (int64, error) {
	return int64(len(f.scores)), nil
}
