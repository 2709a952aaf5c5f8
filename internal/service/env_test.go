package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/cache"
	"minisocial/internal/database/dbtest"
	"minisocial/internal/model"
	"minisocial/internal/repository"
)

// testEnv wires every service over a throwaway SQLite database.
type testEnv struct {
	db *sqlx.DB

	userRepo repository.UserRepository
	postRepo repository.PostRepository

	follows  *FollowService
	users    *UserService
	posts    *PostService
	comments *CommentService
	feed     *FeedService
}

func newTestEnv(t *testing.T, feedCache cache.FeedCache) *testEnv {
	t.Helper()

	db := dbtest.New(t)
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	follows := NewFollowService(followRepo, userRepo, db)
	return &testEnv{
		db:       db,
		userRepo: userRepo,
		postRepo: postRepo,
		follows:  follows,
		users:    NewUserService(userRepo, follows),
		posts:    NewPostService(postRepo, userRepo, feedCache, db),
		comments: NewCommentService(commentRepo, postRepo, userRepo, db),
		feed:     NewFeedService(postRepo, userRepo, feedCache),
	}
}

func (e *testEnv) user(t *testing.T, username string) int64 {
	t.Helper()
	return dbtest.InsertUser(t, e.db, username, "")
}

func (e *testEnv) getUser(t *testing.T, id int64) *model.User {
	t.Helper()
	user, err := e.userRepo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%d): %v", id, err)
	}
	return user
}

func (e *testEnv) post(t *testing.T, userID int64, content string, createdAt time.Time) int64 {
	t.Helper()
	return dbtest.InsertPost(t, e.db, userID, content, createdAt)
}

func containsUser(users []model.UserSummary, id int64) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}
