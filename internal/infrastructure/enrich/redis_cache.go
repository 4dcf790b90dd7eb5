package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const geoKeyPrefix = "geo:"

type geoEntry struct {
	Country string `json:"country"`
}

// RedisCache stores lookups as JSON under geo:<ip> with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, ip string) (string, bool, error) {
	value, err := c.client.Get(ctx, geoKeyPrefix+ip).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read geo cache: %w", err)
	}

	var entry geoEntry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		return "", false, fmt.Errorf("failed to decode geo cache entry: %w", err)
	}
	return entry.Country, true, nil
}

func (c *RedisCache) Set(ctx context.Context, ip, country string) error {
	data, err := json.Marshal(geoEntry{Country: country})
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, geoKeyPrefix+ip, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write geo cache: %w", err)
	}
	return nil
}
