// Package refiner asks a language model for a supplementary opinion on a
// scored stock, for a review of a run's stocks taken together, and for a
// read of the overall market.
package refiner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"StockScreener/internal/model"
)

// ErrDisabled is returned by the noop refiner.
var ErrDisabled = errors.New("ai refinement disabled")

// Provider names.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default model per provider.
var DefaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-2.0-flash",
}

// Refiner is an AI provider. Refine returns a supplementary opinion for a
// computed result; RefinePortfolio reviews the results that carry one;
// MarketSentiment reads the market from the given index quotes, which may
// be empty.
type Refiner interface {
	Refine(ctx context.Context, result *model.AnalysisResult) (*model.Opinion, error)
	RefinePortfolio(ctx context.Context, results []*model.AnalysisResult) (*model.PortfolioView, error)
	MarketSentiment(ctx context.Context, indices []model.Quote) (*model.MarketSentiment, error)
	Name() string
}

// Config selects and tunes a provider.
type Config struct {
	Provider          string
	APIKey            string
	Model             string
	BaseURL           string
	MaxTokens         int
	Temperature       float64
	RequestsPerMinute int
	Timeout           time.Duration
}

func (c Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModels[c.Provider]
}

func (c Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 2000
}

// New builds the refiner for cfg.Provider, wrapped in a rate limiter when
// RequestsPerMinute is set.
func New(ctx context.Context, cfg Config) (Refiner, error) {
	var (
		r   Refiner
		err error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderNone:
		return Noop{}, nil
	case ProviderOpenAI:
		r, err = NewOpenAIRefiner(cfg)
	case ProviderAnthropic:
		r, err = NewClaudeRefiner(cfg)
	case ProviderGemini:
		r, err = NewGeminiRefiner(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.RequestsPerMinute > 0 {
		r = NewRateLimited(r, cfg.RequestsPerMinute)
	}
	return r, nil
}

// Noop never refines.
type Noop struct{}

func (Noop) Refine(context.Context, *model.AnalysisResult) (*model.Opinion, error) {
	return nil, ErrDisabled
}

func (Noop) RefinePortfolio(context.Context, []*model.AnalysisResult) (*model.PortfolioView, error) {
	return nil, ErrDisabled
}

func (Noop) MarketSentiment(context.Context, []model.Quote) (*model.MarketSentiment, error) {
	return nil, ErrDisabled
}

func (Noop) Name() string { return ProviderNone }

func requireKey(cfg Config) error {
	if cfg.APIKey == "" {
		return fmt.Errorf("%s: api key is required", cfg.Provider)
	}
	return nil
}
