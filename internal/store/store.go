// Package store persists analysis results keyed by canonical URL with a TTL.
package store

import (
	"context"
	"time"

	"github.com/webangle/teardown-cli/internal/model"
)

// CacheStats summarizes the cache contents.
type CacheStats struct {
	Total   int `json:"total"`
	Expired int `json:"expired"`
}

// Store defines the persistence interface for cached analyses. A cache miss
// is (nil, nil); reads of expired rows behave as misses. Results returned
// from GetAnalysis are fresh copies with Meta.CacheHit set, the stored record
// is never mutated.
type Store interface {
	GetAnalysis(ctx context.Context, urlKey string) (*model.AnalysisResult, error)
	SetAnalysis(ctx context.Context, urlKey string, result *model.AnalysisResult, ttl time.Duration) error
	DeleteAnalysis(ctx context.Context, urlKey string) (bool, error)
	DeleteExpired(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*CacheStats, error)

	Migrate(ctx context.Context) error
	Close() error
}
