package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// EditionCache is a cache-aside layer for edition payloads. Misses return
// (nil, nil).
type EditionCache interface {
	Get(ctx context.Context, olid string) (map[string]any, error)
	Set(ctx context.Context, olid string, data map[string]any) error
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) EditionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisCache{client: client, ttl: ttl}
}

func editionKey(olid string) string { return "openlibrary:edition:" + olid }

func (c *redisCache) Get(ctx context.Context, olid string) (map[string]any, error) {
	val, err := c.client.Get(ctx, editionKey(olid)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *redisCache) Set(ctx context.Context, olid string, data map[string]any) error {
	val, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, editionKey(olid), val, c.ttl).Err()
}
