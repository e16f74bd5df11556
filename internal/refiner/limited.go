package refiner

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"StockScreener/internal/model"
)

// RateLimited paces calls to the wrapped refiner with a token bucket.
type RateLimited struct {
	next    Refiner
	limiter *rate.Limiter
}

// NewRateLimited allows perMinute requests per minute with a burst of one.
func NewRateLimited(next Refiner, perMinute int) *RateLimited {
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (r *RateLimited) Refine(ctx context.Context, result *model.AnalysisResult) (*model.Opinion, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.next.Refine(ctx, result)
}

func (r *RateLimited) RefinePortfolio(ctx context.Context, results []*model.AnalysisResult) (*model.PortfolioView, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.next.RefinePortfolio(ctx, results)
}

func (r *RateLimited) MarketSentiment(ctx context.Context, indices []model.Quote) (*model.MarketSentiment, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.next.MarketSentiment(ctx, indices)
}

func (r *RateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit: %w", r.next.Name(), err)
	}
	return nil
}

func (r *RateLimited) Name() string { return r.next.Name() }
