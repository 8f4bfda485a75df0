package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"formview/internal/display"
)

// RedisCache keeps encoded trees with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached tree, or nil and no error on a miss.
func (c *RedisCache) Get(ctx context.Context, key Key) (*display.Group, error) {
	b, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decode(b)
}

func (c *RedisCache) Set(ctx context.Context, key Key, tree *display.Group) error {
	b, err := encode(tree)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key.String(), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
