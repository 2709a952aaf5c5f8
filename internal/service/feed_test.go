package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"minisocial/internal/model"
)

func postIDsOf(posts []model.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// seedFeed inserts n posts one second apart and returns their ids newest first.
func seedFeed(t *testing.T, env *testEnv, authorID int64, n int) []int64 {
	t.Helper()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		ids[n-1-i] = env.post(t, authorID, "post", base.Add(time.Duration(i)*time.Second))
	}
	return ids
}

// =============================================================================
// ORDERING & PAGINATION
// =============================================================================

func TestFeedService_GetFeed_OrderAndLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.user(t, "alice")
	want := seedFeed(t, env, alice, 5)

	resp, err := env.feed.GetFeed(ctx, nil, nil, 3)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !equalIDs(postIDsOf(resp.Posts), want[:3]) {
		t.Errorf("posts = %v, want %v", postIDsOf(resp.Posts), want[:3])
	}
	if !resp.HasMore || resp.NextCursor == nil {
		t.Error("expected more posts")
	}
	for i := 1; i < len(resp.Posts); i++ {
		if resp.Posts[i].CreatedAt.After(resp.Posts[i-1].CreatedAt) {
			t.Errorf("posts[%d] is newer than posts[%d]", i, i-1)
		}
	}

	next, err := env.feed.GetFeed(ctx, nil, resp.NextCursor, 3)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !equalIDs(postIDsOf(next.Posts), want[3:]) {
		t.Errorf("page 2 = %v, want %v", postIDsOf(next.Posts), want[3:])
	}
	if next.HasMore || next.NextCursor != nil {
		t.Error("last page should not report more")
	}
}

func TestFeedService_GetFeed_TiesBrokenByID(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.user(t, "alice")
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	p1 := env.post(t, alice, "a", at)
	p2 := env.post(t, alice, "b", at)
	p3 := env.post(t, alice, "c", at)

	page1, err := env.feed.GetFeed(ctx, nil, nil, 2)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	page2, err := env.feed.GetFeed(ctx, nil, page1.NextCursor, 2)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}

	got := append(postIDsOf(page1.Posts), postIDsOf(page2.Posts)...)
	if !equalIDs(got, []int64{p3, p2, p1}) {
		t.Errorf("posts across pages = %v, want %v", got, []int64{p3, p2, p1})
	}
}

func TestFeedService_GetFeed_Limits(t *testing.T) {
	env := newTestEnv(t, nil)
	alice := env.user(t, "alice")
	seedFeed(t, env, alice, model.FeedMaxLimit+5)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "default", limit: 0, want: model.FeedDefaultLimit},
		{name: "negative", limit: -1, want: model.FeedDefaultLimit},
		{name: "explicit", limit: 7, want: 7},
		{name: "capped", limit: 1000, want: model.FeedMaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := env.feed.GetFeed(context.Background(), nil, nil, tt.limit)
			if err != nil {
				t.Fatalf("GetFeed: %v", err)
			}
			if len(resp.Posts) != tt.want {
				t.Errorf("got %d posts, want %d", len(resp.Posts), tt.want)
			}
		})
	}
}

func TestFeedService_GetFeed_Empty(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, err := env.feed.GetFeed(context.Background(), nil, nil, 10)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if resp.Posts == nil || len(resp.Posts) != 0 || resp.HasMore {
		t.Errorf("empty feed = %+v", resp)
	}
}

func TestFeedService_GetFeed_InvalidCursor(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, cursor := range []string{"garbage", "123", "abc:1", "123:xyz", "123:0"} {
		c := cursor
		_, err := env.feed.GetFeed(context.Background(), nil, &c, 10)
		if !errors.Is(err, model.ErrInvalidCursor) || !errors.Is(err, model.ErrValidation) {
			t.Errorf("cursor %q: error = %v, want %v", cursor, err, model.ErrInvalidCursor)
		}
	}
}

func TestCursor_RoundTrip(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 123456000, time.UTC)

	cursor := formatCursor(at, 42)
	gotAt, gotID, err := parseCursor(cursor)
	if err != nil {
		t.Fatalf("parseCursor(%q): %v", cursor, err)
	}
	if !gotAt.Equal(at) || gotID != 42 {
		t.Errorf("parsed = %v/%d, want %v/42", gotAt, gotID, at)
	}
}

// =============================================================================
// DECORATION
// =============================================================================

func TestFeedService_GetFeed_Decoration(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	post, err := env.posts.Create(ctx, alice, model.CreatePostRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.posts.ToggleLike(ctx, post.ID, bob); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if _, err := env.comments.Create(ctx, post.ID, bob, "nice"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	resp, err := env.feed.GetFeed(ctx, &bob, nil, 10)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if len(resp.Posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(resp.Posts))
	}

	got := resp.Posts[0]
	if got.Author == nil || got.Author.Username != "alice" {
		t.Errorf("author = %+v", got.Author)
	}
	if !equalIDs(got.Likes, []int64{bob}) || got.LikeCount != 1 || !got.IsLiked {
		t.Errorf("likes = %v count = %d is_liked = %v", got.Likes, got.LikeCount, got.IsLiked)
	}
	if got.CommentCount != 1 {
		t.Errorf("comment_count = %d, want 1", got.CommentCount)
	}

	anon, err := env.feed.GetFeed(ctx, nil, nil, 10)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if anon.Posts[0].IsLiked {
		t.Error("anonymous viewer must never see is_liked")
	}
}

// =============================================================================
// TIMELINE CACHE
// =============================================================================

func TestFeedService_GetFeed_WarmsThenHitsCache(t *testing.T) {
	feedCache := newFakeFeedCache()
	env := newTestEnv(t, feedCache)
	ctx := context.Background()
	alice := env.user(t, "alice")
	want := seedFeed(t, env, alice, 4)

	// Miss: served from DB, cache warmed
	first, err := env.feed.GetFeed(ctx, nil, nil, 10)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if feedCache.warmCalls != 1 || !feedCache.ready {
		t.Fatalf("cache not warmed: calls=%d ready=%v", feedCache.warmCalls, feedCache.ready)
	}

	// Hit: same result from cache ids
	second, err := env.feed.GetFeed(ctx, nil, nil, 10)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if feedCache.warmCalls != 1 {
		t.Errorf("warmed %d times, want 1", feedCache.warmCalls)
	}
	if !equalIDs(postIDsOf(first.Posts), want) || !equalIDs(postIDsOf(second.Posts), want) {
		t.Errorf("cached feed = %v, db feed = %v, want %v", postIDsOf(second.Posts), postIDsOf(first.Posts), want)
	}
	if second.Posts[0].Author == nil {
		t.Error("cached posts must be hydrated with authors")
	}

	// New post written through shows up at the top
	post, err := env.posts.Create(ctx, alice, model.CreatePostRequest{Content: "fresh"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	third, err := env.feed.GetFeed(ctx, nil, nil, 2)
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if third.Posts[0].ID != post.ID || !third.HasMore {
		t.Errorf("top of feed = %v hasMore=%v, want %d first", postIDsOf(third.Posts), third.HasMore, post.ID)
	}
}

func TestFeedService_GetFeed_CacheErrorFallsBack(t *testing.T) {
	feedCache := newFakeFeedCache()
	feedCache.getErr = errors.New("connection refused")
	env := newTestEnv(t, feedCache)
	alice := env.user(t, "alice")
	want := seedFeed(t, env, alice, 3)

	resp, err := env.feed.GetFeed(context.Background(), nil, nil, 10)
	if err != nil {
		t.Fatalf("cache errors must not fail the feed, got: %v", err)
	}
	if !equalIDs(postIDsOf(resp.Posts), want) {
		t.Errorf("posts = %v, want %v", postIDsOf(resp.Posts), want)
	}
}
