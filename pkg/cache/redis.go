package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores entries in Redis with native key expiry.
type RedisCache struct {
	client *redis.Client
}

// RedisOptions configures NewRedisCache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection with PING,
// retrying transient failures.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	err := RetryWithBackoff(ctx, func() error {
		return Retryable(client.Ping(ctx).Err())
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis %s: %v", ErrUnavailable, opts.Addr, err)
	}
	return &RedisCache{client: client}, nil
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set implements Cache. A zero ttl stores the key without expiry.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// Clear deletes every artifact key, scoped or not. Other keys in the
// database are left alone.
func (c *RedisCache) Clear(ctx context.Context) (int, error) {
	n := 0
	iter := c.client.Scan(ctx, 0, "*artifact:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return n, err
		}
		n++
	}
	return n, iter.Err()
}

// Close implements Cache.
func (c *RedisCache) Close() error { return c.client.Close() }

var (
	_ Cache   = (*RedisCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
