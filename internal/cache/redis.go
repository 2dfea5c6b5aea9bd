package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"medreader/internal/report"
)

// Key prefix for cached analyses
const analysisKeyPrefix = "analysis:"

type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache client and verifies the
// connection.
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// GetAnalysis retrieves a cached analysis by key.
func (c *RedisCache) GetAnalysis(ctx context.Context, key string) (*report.Summary, error) {
	data, err := c.client.Get(ctx, analysisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}

	var summary report.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	summary.EnsureLists()
	return &summary, nil
}

// SetAnalysis stores an analysis with TTL.
func (c *RedisCache) SetAnalysis(ctx context.Context, key string, summary *report.Summary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, analysisKeyPrefix+key, data, ttl).Err()
}

// Close closes the cache connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
