package cache

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache connects to TEST_REDIS_URL and flushes that database.
// Tests skip when no Redis is reachable.
func newTestCache(t *testing.T) FeedCache {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/1"
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opts)
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis not available at %s: %v", url, err)
	}
	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return NewFeedCache(client)
}

func TestFeedCache_NotReadyUntilWarmed(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ids, ready, err := c.GetLatest(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ready)
	assert.Nil(t, ids)

	require.NoError(t, c.WarmCache(ctx, nil))

	ids, ready, err = c.GetLatest(ctx, 10)
	require.NoError(t, err)
	assert.True(t, ready)
	assert.Empty(t, ids)
}

func TestFeedCache_OrderAndTies(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.WarmCache(ctx, []PostScore{
		{PostID: 1, Timestamp: 100},
		{PostID: 2, Timestamp: 300},
		{PostID: 9, Timestamp: 200},
		{PostID: 10, Timestamp: 200},
	}))
	require.NoError(t, c.AddPost(ctx, 11, 400))

	ids, ready, err := c.GetLatest(ctx, 10)
	require.NoError(t, err)
	require.True(t, ready)
	assert.Equal(t, []int64{11, 2, 10, 9, 1}, ids)

	ids, _, err = c.GetLatest(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{11, 2}, ids)
}

func TestFeedCache_CapKeepsNewest(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	posts := make([]PostScore, FeedCacheCap)
	for i := range posts {
		posts[i] = PostScore{PostID: int64(i + 1), Timestamp: int64(i + 1)}
	}
	require.NoError(t, c.WarmCache(ctx, posts))
	require.NoError(t, c.AddPost(ctx, FeedCacheCap+1, FeedCacheCap+1))

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(FeedCacheCap), size)

	ids, _, err := c.GetLatest(ctx, FeedCacheCap)
	require.NoError(t, err)
	assert.Equal(t, int64(FeedCacheCap+1), ids[0])
	assert.Equal(t, int64(2), ids[len(ids)-1])
}

func TestFeedCache_Invalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.WarmCache(ctx, []PostScore{{PostID: 1, Timestamp: 1}}))
	require.NoError(t, c.Invalidate(ctx))

	ids, ready, err := c.GetLatest(ctx, 10)
	require.NoError(t, err)
	assert.False(t, ready)
	assert.Nil(t, ids)

	size, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
}
