package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"multidrop-route-service/internal/platform/obs"
	"multidrop-route-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

const travelKeyPrefix = "travel:"

// RedisTravelCache stores travel estimates as JSON values with a TTL so
// several service instances share lookups.
type RedisTravelCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTravelCache(client *redis.Client, ttl time.Duration) *RedisTravelCache {
	return &RedisTravelCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

func (c *RedisTravelCache) GetMany(ctx context.Context, keys []string) (_ map[string]ports.TravelEstimate, err error) {
	defer obs.Time(ctx, "travel.cache.GetMany")(&err)

	if len(keys) == 0 {
		return map[string]ports.TravelEstimate{}, nil
	}

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = travelKeyPrefix + k
	}

	vals, err := c.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get travel cache: mget: %w", err)
	}

	out := make(map[string]ports.TravelEstimate, len(keys))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var est ports.TravelEstimate
		if err := json.Unmarshal([]byte(s), &est); err != nil {
			return nil, fmt.Errorf("get travel cache: decode %q: %w", keys[i], err)
		}
		out[keys[i]] = est
	}
	return out, nil
}

func (c *RedisTravelCache) PutMany(ctx context.Context, results map[string]ports.TravelEstimate) (err error) {
	defer obs.Time(ctx, "travel.cache.PutMany")(&err)

	if len(results) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for k, v := range results {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("put travel cache: encode %q: %w", k, err)
		}
		pipe.Set(ctx, travelKeyPrefix+k, b, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("put travel cache: exec: %w", err)
	}
	return nil
}
