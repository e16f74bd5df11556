package collector

import (
	"context"
	"errors"

	"StockScreener/internal/model"
)

// ErrNoData is returned when a source has no bars or quote for a symbol.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)
	FetchQuote(ctx context.Context, symbol string) (model.Quote, error)
	Name() string
}

// Screener runs a saved condition search and returns the matching stocks.
type Screener interface {
	Search(ctx context.Context, condition string) ([]model.Stock, error)
}

// StaticScreener returns a fixed watchlist regardless of the condition.
type StaticScreener struct {
	Stocks []model.Stock
}

func (s *StaticScreener) Search(_ context.Context, _ string) ([]model.Stock, error) {
	return append([]model.Stock(nil), s.Stocks...), nil
}
