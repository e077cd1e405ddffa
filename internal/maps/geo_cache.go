package maps

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "wanderplan:geocode:"

// GeoCache stores geocoding results by normalized address key.
type GeoCache interface {
	Get(ctx context.Context, key string) (Point, bool, error)
	Set(ctx context.Context, key string, p Point, ttl time.Duration) error
}

func cacheKey(address string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.Join(strings.Fields(address), " "))))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// RedisGeoCache keeps geocoding results in Redis as JSON.
type RedisGeoCache struct {
	rdb *redis.Client
}

func NewRedisGeoCache(rdb *redis.Client) *RedisGeoCache {
	return &RedisGeoCache{rdb: rdb}
}

func (c *RedisGeoCache) Get(ctx context.Context, key string) (Point, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Point{}, false, nil
	}
	if err != nil {
		return Point{}, false, err
	}
	var p Point
	if err := json.Unmarshal(raw, &p); err != nil {
		return Point{}, false, err
	}
	return p, true, nil
}

func (c *RedisGeoCache) Set(ctx context.Context, key string, p Point, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

type noCache struct{}

func (noCache) Get(context.Context, string) (Point, bool, error) { return Point{}, false, nil }
func (noCache) Set(context.Context, string, Point, time.Duration) error { return nil }
