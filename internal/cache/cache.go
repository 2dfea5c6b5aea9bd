package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"medreader/internal/report"
)

// Cache holds analysis results for identical report submissions so a
// repeated upload does not pay for a second provider call. Entries are
// derived data under a content-hash key with a TTL; nothing durable is
// stored, and the default implementation is the no-op.
type Cache interface {
	// GetAnalysis retrieves a cached analysis by key.
	// Returns nil if not found.
	GetAnalysis(ctx context.Context, key string) (*report.Summary, error)

	// SetAnalysis stores an analysis with TTL.
	SetAnalysis(ctx context.Context, key string, summary *report.Summary, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// AnalysisKey derives the cache key for a provider/report pair.
func AnalysisKey(providerName, reportText string) string {
	h := sha256.New()
	h.Write([]byte(providerName))
	h.Write([]byte{0})
	h.Write([]byte(reportText))
	return hex.EncodeToString(h.Sum(nil))
}
