package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// TimelineKey is the sorted set holding the newest post ids of the global feed
	TimelineKey = "feed:global"

	// TimelineReadyKey marks TimelineKey as warmed from the database
	TimelineReadyKey = "feed:global:ready"

	// FeedCacheCap is the maximum number of posts kept in the timeline
	FeedCacheCap = 500

	// FeedCacheTTL is the TTL for the timeline (7 days)
	FeedCacheTTL = 7 * 24 * time.Hour
)

// PostScore represents a post with its timestamp score for caching
type PostScore struct {
	PostID    int64
	Timestamp int64 // Unix microseconds
}

// FeedCache defines the interface for timeline cache operations.
type FeedCache interface {
	// AddPost adds a post to the timeline.
	// Uses pipeline: ZADD + ZREMRANGEBYRANK (maintain cap) + EXPIRE (refresh TTL)
	AddPost(ctx context.Context, postID int64, timestamp int64) error

	// GetLatest returns up to limit post ids, newest first, ties by id descending.
	// ready is false when the timeline has not been warmed; ids are then nil.
	GetLatest(ctx context.Context, limit int) (postIDs []int64, ready bool, err error)

	// WarmCache bulk-inserts posts and marks the timeline ready.
	WarmCache(ctx context.Context, posts []PostScore) error

	// Invalidate drops the timeline so the next read warms it again.
	Invalidate(ctx context.Context) error

	// Size returns the number of posts in the timeline.
	Size(ctx context.Context) (int64, error)
}

// RedisFeedCache implements FeedCache using a Redis Sorted Set.
type RedisFeedCache struct {
	client *redis.Client
}

// NewFeedCache creates a new FeedCache backed by Redis.
func NewFeedCache(client *redis.Client) FeedCache {
	return &RedisFeedCache{client: client}
}

// member zero-pads the id so Redis' lexical tie-break on equal scores matches numeric order.
func member(postID int64) string {
	return fmt.Sprintf("%019d", postID)
}

// AddPost adds a post to the timeline using a pipeline.
func (c *RedisFeedCache) AddPost(ctx context.Context, postID int64, timestamp int64) error {
	startTime := time.Now()

	pipe := c.client.Pipeline()

	pipe.ZAdd(ctx, TimelineKey, redis.Z{
		Score:  float64(timestamp),
		Member: member(postID),
	})

	// Rank 0 is the oldest; keep the newest FeedCacheCap members
	pipe.ZRemRangeByRank(ctx, TimelineKey, 0, int64(-FeedCacheCap-1))

	pipe.Expire(ctx, TimelineKey, FeedCacheTTL)
	pipe.Expire(ctx, TimelineReadyKey, FeedCacheTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[FeedCache] AddPost FAILED: post=%d err=%v", postID, err)
		return fmt.Errorf("add post to timeline: %w", err)
	}

	log.Printf("[FeedCache] AddPost OK: post=%d timestamp=%d duration=%v",
		postID, timestamp, time.Since(startTime))
	return nil
}

// GetLatest reads the newest ids with ZREVRANGE once the ready marker is present.
func (c *RedisFeedCache) GetLatest(ctx context.Context, limit int) ([]int64, bool, error) {
	startTime := time.Now()

	ready, err := c.client.Exists(ctx, TimelineReadyKey).Result()
	if err != nil {
		log.Printf("[FeedCache] GetLatest FAILED: err=%v", err)
		return nil, false, fmt.Errorf("check timeline ready: %w", err)
	}
	if ready == 0 {
		log.Printf("[FeedCache] GetLatest: timeline not warmed")
		return nil, false, nil
	}

	members, err := c.client.ZRevRange(ctx, TimelineKey, 0, int64(limit-1)).Result()
	if err != nil {
		log.Printf("[FeedCache] GetLatest FAILED: limit=%d err=%v", limit, err)
		return nil, false, fmt.Errorf("get timeline: %w", err)
	}

	postIDs := make([]int64, len(members))
	for i, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			log.Printf("[FeedCache] GetLatest parse error: member=%q err=%v", m, err)
			return nil, false, fmt.Errorf("parse post id: %w", err)
		}
		postIDs[i] = id
	}

	log.Printf("[FeedCache] GetLatest OK: limit=%d returned=%d duration=%v",
		limit, len(postIDs), time.Since(startTime))
	return postIDs, true, nil
}

// WarmCache bulk-inserts posts and sets the ready marker in one MULTI/EXEC.
func (c *RedisFeedCache) WarmCache(ctx context.Context, posts []PostScore) error {
	startTime := time.Now()

	pipe := c.client.TxPipeline()

	if len(posts) > 0 {
		members := make([]redis.Z, len(posts))
		for i, p := range posts {
			members[i] = redis.Z{
				Score:  float64(p.Timestamp),
				Member: member(p.PostID),
			}
		}
		pipe.ZAdd(ctx, TimelineKey, members...)
		pipe.ZRemRangeByRank(ctx, TimelineKey, 0, int64(-FeedCacheCap-1))
		pipe.Expire(ctx, TimelineKey, FeedCacheTTL)
	}
	pipe.Set(ctx, TimelineReadyKey, "1", FeedCacheTTL)

	_, err := pipe.Exec(ctx)
	if err != nil {
		log.Printf("[FeedCache] WarmCache FAILED: posts=%d err=%v", len(posts), err)
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedCache] WarmCache OK: posts=%d duration=%v", len(posts), time.Since(startTime))
	return nil
}

// Invalidate deletes the timeline and its ready marker.
func (c *RedisFeedCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, TimelineKey, TimelineReadyKey).Err(); err != nil {
		log.Printf("[FeedCache] Invalidate FAILED: err=%v", err)
		return fmt.Errorf("invalidate timeline: %w", err)
	}
	log.Printf("[FeedCache] Invalidate OK")
	return nil
}

// Size returns the number of posts in the timeline.
func (c *RedisFeedCache) Size(ctx context.Context) (int64, error) {
	size, err := c.client.ZCard(ctx, TimelineKey).Result()
	if err != nil {
		log.Printf("[FeedCache] Size FAILED: err=%v", err)
		return 0, fmt.Errorf("get cache size: %w", err)
	}
	return size, nil
}
