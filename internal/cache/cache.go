// Package cache stores fetched price histories between runs.
package cache

import (
	"context"
	"errors"
	"time"

	"StockScreener/internal/model"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache: key not found")

// Cache stores bar slices under string keys with a TTL.
type Cache interface {
	GetBars(ctx context.Context, key string) ([]model.OHLCV, error)
	SetBars(ctx context.Context, key string, bars []model.OHLCV, ttl time.Duration) error
	Close() error
}

// DefaultTTL applies when SetBars is called with a non-positive ttl.
const DefaultTTL = 6 * time.Hour
