package role

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores fully loaded roles for the authorization path.
type Cache interface {
	Get(ctx context.Context, id int64) (*Role, bool, error)
	Set(ctx context.Context, r *Role) error
	Delete(ctx context.Context, id int64) error
}

const cacheKeyPrefix = "erp:rbac:role:"

type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", cacheKeyPrefix, id)
}

func (c *RedisCache) Get(ctx context.Context, id int64) (*Role, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get role %d: %w", id, err)
	}

	var r Role
	if err := json.Unmarshal(raw, &r); err != nil {
		// a bad entry is treated as a miss and overwritten on the next load
		return nil, false, nil
	}
	return &r, true, nil
}

func (c *RedisCache) Set(ctx context.Context, r *Role) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode role %d: %w", r.ID, err)
	}
	if err := c.client.Set(ctx, cacheKey(r.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set role %d: %w", r.ID, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete role %d: %w", id, err)
	}
	return nil
}
