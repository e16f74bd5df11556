// Package analyzer turns one stock's price history into an AnalysisResult.
package analyzer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

// MinBars is the shortest history that is analyzed.
const MinBars = 20

// Analyzer assembles indicator, signal, score, risk and narrative output.
// It holds no per-call state and is safe for concurrent use.
type Analyzer struct {
	indicators calculator.IndicatorSet
	now        func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithIndicatorSet replaces the standard indicator implementation.
func WithIndicatorSet(set calculator.IndicatorSet) Option {
	return func(a *Analyzer) { a.indicators = set }
}

// WithClock sets the time source used for AnalyzedAt.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		indicators: calculator.NewStandard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores one stock. It never fails: histories shorter than MinBars
// yield the insufficient-data result.
func (a *Analyzer) Analyze(symbol string, bars []model.OHLCV, name string) *model.AnalysisResult {
	if len(bars) < MinBars {
		log.Warn().Str("symbol", symbol).Int("bars", len(bars)).Msg("insufficient data for analysis")
		return Empty(symbol, name, a.now())
	}

	snap := a.indicators.Compute(bars)
	ev := strategy.Evaluate(snap)
	current := currentValues(snap)

	return &model.AnalysisResult{
		Symbol:         symbol,
		Name:           name,
		Status:         model.StatusComputed,
		Scores:         ev.Scores,
		Signals:        ev.Signals,
		Risk:           ev.Risk,
		Indicators:     current,
		Recommendation: ev.Recommendation,
		AnalyzedAt:     a.now(),
		Narrative:      buildNarrative(snap, bars, ev.Signals, current),
		Market:         marketSnapshot(bars),
	}
}

// Empty returns the insufficient-data result: score 50, no signals,
// moderate risk, recommendation watch.
func Empty(symbol, name string, at time.Time) *model.AnalysisResult {
	return &model.AnalysisResult{
		Symbol: symbol,
		Name:   name,
		Status: model.StatusInsufficientData,
		Scores: model.ScoreBreakdown{
			Base:    strategy.BaseScore,
			Overall: strategy.BaseScore,
		},
		Signals:        []model.Signal{},
		Risk:           model.RiskModerate,
		Recommendation: model.RecWatch,
		AnalyzedAt:     at,
	}
}

// Input is one stock handed to AnalyzeBatch.
type Input struct {
	Stock model.Stock
	Bars  []model.OHLCV
}

// AnalyzeBatch analyzes inputs with at most `workers` goroutines. Results
// keep the order of inputs. It only fails when ctx is cancelled.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, inputs []Input, workers int) ([]*model.AnalysisResult, error) {
	results := make([]*model.AnalysisResult, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.Analyze(in.Stock.Code, in.Bars, in.Stock.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func currentValues(snap *model.IndicatorSnapshot) *model.CurrentValues {
	return &model.CurrentValues{
		RSI:          model.Reading(calculator.Last(snap.RSI)),
		MACD:         model.Reading(calculator.Last(snap.MACD)),
		MACDSignal:   model.Reading(calculator.Last(snap.MACDSignal)),
		SMA5:         model.Reading(calculator.Last(snap.SMA5)),
		SMA20:        model.Reading(calculator.Last(snap.SMA20)),
		CurrentPrice: calculator.Last(snap.Close),
		StochK:       model.Reading(calculator.Last(snap.StochK)),
		StochD:       model.Reading(calculator.Last(snap.StochD)),
	}
}

func marketSnapshot(bars []model.OHLCV) *model.MarketSnapshot {
	last := bars[len(bars)-1]
	high, low, _ := calculator.HistoryRange(bars)
	vols := calculator.Volumes(bars)
	return &model.MarketSnapshot{
		CurrentPrice: last.Close,
		Volume:       last.Volume,
		High52w:      high,
		Low52w:       low,
		AvgVolume20d: calculator.Mean(vols[len(vols)-20:]),
	}
}
