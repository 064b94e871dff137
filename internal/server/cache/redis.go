package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/businessinrwanda/marketplace/internal/server/models"
)

// redisClient is the part of *redis.Client the cache needs.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisClaimCache struct {
	rdb redisClient
	ttl time.Duration
}

func NewRedisClaimCache(rdb *redis.Client, ttl time.Duration) *RedisClaimCache {
	return &RedisClaimCache{rdb: rdb, ttl: ttl}
}

// NewRedisClient parses redisURL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func claimsKey(userID string) string {
	return "claims:user:" + userID
}

func (c *RedisClaimCache) Get(ctx context.Context, userID string) (*models.MyClaims, bool, error) {
	raw, err := c.rdb.Get(ctx, claimsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var claims models.MyClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, false, fmt.Errorf("decode cached claims: %w", err)
	}
	return &claims, true, nil
}

func (c *RedisClaimCache) Set(ctx context.Context, userID string, claims *models.MyClaims) error {
	raw, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("encode claims: %w", err)
	}
	if err := c.rdb.Set(ctx, claimsKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisClaimCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, claimsKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
