package cache

import (
	"context"
	"time"

	"medreader/internal/report"
)

// NoOpCache is a cache implementation that does nothing. It is the
// default: all operations succeed but every lookup is a miss, so the
// service stays fully stateless unless Redis is configured.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetAnalysis always returns nil (cache miss)
func (c *NoOpCache) GetAnalysis(ctx context.Context, key string) (*report.Summary, error) {
	return nil, nil
}

// SetAnalysis does nothing and always succeeds
func (c *NoOpCache) SetAnalysis(ctx context.Context, key string, summary *report.Summary, ttl time.Duration) error {
	return nil
}

// Close does nothing and always succeeds
func (c *NoOpCache) Close() error {
	return nil
}
