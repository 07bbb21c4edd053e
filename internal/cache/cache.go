package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arvindnk/dataforge/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Cache is the caching interface. All cache operations go through here.
// Implementations must be safe for concurrent use.
type Cache interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	SetTerminalJob(ctx context.Context, job *models.Job, ttl time.Duration) error
	GetTerminalJob(ctx context.Context, jobID int64) (*models.Job, bool, error)
	IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// RedisCache implements the Cache interface using go-redis/v9.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new RedisCache from a Redis URL.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisCache{client: redis.NewClient(opts)}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// SetTerminalJob caches a finished job. Only COMPLETED and FAILED jobs
// belong here: terminal states are immutable, so a cached copy can
// never go stale.
func (c *RedisCache) SetTerminalJob(ctx context.Context, job *models.Job, ttl time.Duration) error {
	if !job.Terminal() {
		return fmt.Errorf("refusing to cache non-terminal job %d (status %s)", job.ID, job.Status)
	}
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return c.client.Set(ctx, TerminalJobKey(job.ID), b, ttl).Err()
}

func (c *RedisCache) GetTerminalJob(ctx context.Context, jobID int64) (*models.Job, bool, error) {
	val, err := c.client.Get(ctx, TerminalJobKey(jobID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var job models.Job
	if err := json.Unmarshal(val, &job); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached job: %w", err)
	}
	return &job, true, nil
}

func (c *RedisCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, expiry)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
