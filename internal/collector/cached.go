package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"StockScreener/internal/cache"
	"StockScreener/internal/model"
)

// CachedFetcher serves daily bars from a cache before asking the wrapped
// Fetcher. Quotes are never cached.
type CachedFetcher struct {
	Fetcher
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedFetcher wraps f with c.
func NewCachedFetcher(f Fetcher, c cache.Cache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Fetcher: f, cache: c, ttl: ttl}
}

func (f *CachedFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	key := fmt.Sprintf("bars:%s:%s:%d", f.Fetcher.Name(), symbol, days)
	bars, err := f.cache.GetBars(ctx, key)
	if err == nil {
		return bars, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache read failed")
	}

	bars, err = f.Fetcher.FetchDailyBars(ctx, symbol, days)
	if err != nil {
		return nil, err
	}
	if err := f.cache.SetBars(ctx, key, bars, f.ttl); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("bar cache write failed")
	}
	return bars, nil
}
