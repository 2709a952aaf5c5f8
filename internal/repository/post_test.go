package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minisocial/internal/database/dbtest"
	"minisocial/internal/model"
	"minisocial/internal/repository"
)

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()
	alice := dbtest.InsertUser(t, db, "alice", "")

	post := &model.Post{
		UserID:    alice,
		Content:   "hello",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, post))
	require.NoError(t, tx.Commit())
	assert.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, alice, got.UserID)
	assert.True(t, got.CreatedAt.Equal(post.CreatedAt))

	exists, err := repo.Exists(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, post.ID+1)
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	exists, err = repo.Exists(ctx, post.ID+1)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPostRepository_ListOrderAndCursor(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()
	alice := dbtest.InsertUser(t, db, "alice", "")
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	p1 := dbtest.InsertPost(t, db, alice, "first", base)
	// p2 and p3 share a timestamp; id breaks the tie
	p2 := dbtest.InsertPost(t, db, alice, "second", base.Add(time.Second))
	p3 := dbtest.InsertPost(t, db, alice, "third", base.Add(time.Second))
	p4 := dbtest.InsertPost(t, db, alice, "fourth", base.Add(1500*time.Millisecond))

	all, err := repo.List(ctx, nil, 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []int64{p4, p3, p2, p1}, postIDs(all))

	page1, err := repo.List(ctx, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{p4, p3}, postIDs(page1))

	last := page1[len(page1)-1]
	page2, err := repo.List(ctx, &model.PostCursor{CreatedAt: last.CreatedAt, ID: last.ID}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{p2, p1}, postIDs(page2))

	scores, err := repo.ListRecentScores(ctx, 2)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, p4, scores[0].PostID)
	assert.Equal(t, base.Add(1500*time.Millisecond).UnixMicro(), scores[0].Timestamp)

	byIDs, err := repo.GetByIDs(ctx, []int64{p1, p3, 9999})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{p1, p3}, postIDs(byIDs))
}

func TestPostRepository_ListEmpty(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewPostRepository(db)

	posts, err := repo.List(context.Background(), nil, 50)
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostRepository_Likes(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewPostRepository(db)
	ctx := context.Background()

	alice := dbtest.InsertUser(t, db, "alice", "")
	bob := dbtest.InsertUser(t, db, "bob", "")
	post := dbtest.InsertPost(t, db, alice, "like me", time.Now().UTC())
	other := dbtest.InsertPost(t, db, alice, "not me", time.Now().UTC())
	now := time.Now().UTC()

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)

	liked, err := repo.Like(ctx, tx, post, bob, now)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = repo.Like(ctx, tx, post, bob, now)
	require.NoError(t, err)
	assert.False(t, liked)

	_, err = repo.Like(ctx, tx, post, alice, now.Add(time.Second))
	require.NoError(t, err)

	count, err := repo.IncrementLikeCount(ctx, tx, post, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = repo.IncrementLikeCount(ctx, tx, 9999, 1)
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	require.NoError(t, tx.Commit())

	likers, err := repo.GetLikerIDs(ctx, []int64{post, other})
	require.NoError(t, err)
	assert.Equal(t, []int64{bob, alice}, likers[post], "oldest like first")
	assert.Empty(t, likers[other])

	checks, err := repo.CheckLikes(ctx, bob, []int64{post, other})
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{post: true, other: false}, checks)

	tx, err = db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	removed, err := repo.Unlike(ctx, tx, post, bob)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Unlike(ctx, tx, post, bob)
	require.NoError(t, err)
	assert.False(t, removed)
	require.NoError(t, repo.IncrementCommentCount(ctx, tx, post, 1))
	require.NoError(t, tx.Commit())

	got, err := repo.GetByID(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentCount)
}

func postIDs(posts []model.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}
