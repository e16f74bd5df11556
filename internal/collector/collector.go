package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"StockScreener/internal/model"
)

// Collected is the fetch outcome for one screened stock.
type Collected struct {
	Stock model.Stock
	Bars  []model.OHLCV
	Err   error
}

// Collector runs the condition search and fetches price history for each hit.
type Collector struct {
	Fetcher  Fetcher
	Screener Screener
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, screener Screener) *Collector {
	return &Collector{Fetcher: fetcher, Screener: screener}
}

// Screen returns at most limit stocks matching condition. Duplicate codes
// are dropped.
func (c *Collector) Screen(ctx context.Context, condition string, limit int) ([]model.Stock, error) {
	stocks, err := c.Screener.Search(ctx, condition)
	if err != nil {
		return nil, fmt.Errorf("screen: %w", err)
	}
	seen := make(map[string]bool, len(stocks))
	out := make([]model.Stock, 0, len(stocks))
	for _, s := range stocks {
		if seen[s.Code] {
			continue
		}
		seen[s.Code] = true
		if s.Name == "" {
			s.Name = s.Code
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Collect fetches `days` daily bars for every stock. A failure for one stock
// is recorded on its entry and does not stop the others. Collect only
// returns early when ctx is done.
func (c *Collector) Collect(ctx context.Context, stocks []model.Stock, days int) ([]Collected, error) {
	out := make([]Collected, 0, len(stocks))
	for i, s := range stocks {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		bars, err := c.Fetcher.FetchDailyBars(ctx, s.Code, days)
		if err != nil {
			log.Warn().Err(err).Str("symbol", s.Code).Str("fetcher", c.Fetcher.Name()).Msg("fetch daily bars failed")
			out = append(out, Collected{Stock: s, Err: err})
			continue
		}
		log.Debug().Str("symbol", s.Code).Int("bars", len(bars)).Msgf("collected %d/%d", i+1, len(stocks))
		out = append(out, Collected{Stock: s, Bars: bars})
	}
	return out, nil
}
