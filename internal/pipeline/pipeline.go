// Package pipeline runs one screening pass end to end: condition search,
// price history, technical analysis, quote fundamentals, AI refinement,
// notification and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"StockScreener/internal/analyzer"
	"StockScreener/internal/collector"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/notifier"
	"StockScreener/internal/recorder"
	"StockScreener/internal/refiner"
)

// ErrRunInProgress is returned when a run is requested while another one
// is still going.
var ErrRunInProgress = errors.New("screening run already in progress")

// Stages reported in SymbolError and the collaborator error metric.
const (
	StageScreen    = "screen"
	StageFetch     = "fetch"
	StageQuote     = "quote"
	StageRefine    = "refine"
	StagePortfolio = "portfolio"
	StageSentiment = "sentiment"
	StageNotify    = "notify"
	StageRecord    = "record"
)

// DefaultIndices are quoted for the market sentiment request.
var DefaultIndices = []string{"KOSPI", "KOSDAQ"}

// Options tune a run. Fundamentals fetches a quote per computed result and
// attaches its valuation fields before refinement. Indices are the symbols
// quoted for the market sentiment request; nil means DefaultIndices.
type Options struct {
	Condition    string
	MaxStocks    int
	HistoryDays  int
	Workers      int
	Fundamentals bool
	Indices      []string
}

// Runner wires the collaborators of a screening run.
type Runner struct {
	Collector *collector.Collector
	Analyzer  *analyzer.Analyzer
	Refiner   refiner.Refiner
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Metrics   *metrics.Recorder
	Opts      Options

	mu  sync.Mutex
	now func() time.Time
}

// NewRunner creates a runner. A nil refiner disables refinement; nil
// metrics get a private registry.
func NewRunner(col *collector.Collector, an *analyzer.Analyzer, ref refiner.Refiner,
	n notifier.Notifier, rec recorder.Recorder, m *metrics.Recorder, opts Options) *Runner {
	if ref == nil {
		ref = refiner.Noop{}
	}
	if m == nil {
		m = metrics.New()
	}
	if opts.Indices == nil {
		opts.Indices = DefaultIndices
	}
	if opts.MaxStocks <= 0 {
		opts.MaxStocks = 10
	}
	if opts.HistoryDays <= 0 {
		opts.HistoryDays = 100
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Runner{
		Collector: col,
		Analyzer:  an,
		Refiner:   ref,
		Notifier:  n,
		Recorder:  rec,
		Metrics:   m,
		Opts:      opts,
		now:       time.Now,
	}
}

// Run executes one screening pass. Per-symbol failures end up in
// RunReport.Errors; Run only fails when the condition search fails, the
// context is cancelled or another run holds the lock.
func (r *Runner) Run(ctx context.Context, trigger model.Trigger) (*model.RunReport, error) {
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()

	report := &model.RunReport{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		Condition: r.Opts.Condition,
		StartedAt: r.now(),
	}
	logger := log.With().Str("run_id", report.ID).Str("trigger", string(trigger)).Logger()
	logger.Info().Str("condition", r.Opts.Condition).Msg("screening run started")

	stocks, err := r.Collector.Screen(ctx, r.Opts.Condition, r.Opts.MaxStocks)
	if err != nil {
		r.Metrics.RecordError(StageScreen)
		r.Metrics.RecordRun(metrics.StatusFailed, r.now().Sub(report.StartedAt))
		r.notify(ctx, notifier.FormatError("condition search "+r.Opts.Condition, err))
		return nil, err
	}

	if len(stocks) == 0 {
		logger.Warn().Msg("condition search returned no stocks")
		report.Summary = analyzer.Summarize(nil)
		report.FinishedAt = r.now()
		r.notify(ctx, notifier.FormatNoStocks(r.Opts.Condition, report.StartedAt))
		r.record(ctx, report)
		r.Metrics.RecordRun(metrics.StatusEmpty, report.Duration())
		return report, nil
	}

	collected, err := r.Collector.Collect(ctx, stocks, r.Opts.HistoryDays)
	if err != nil {
		r.Metrics.RecordRun(metrics.StatusFailed, r.now().Sub(report.StartedAt))
		return nil, fmt.Errorf("collect: %w", err)
	}

	inputs := make([]analyzer.Input, 0, len(collected))
	for _, c := range collected {
		if c.Err != nil {
			r.Metrics.RecordError(StageFetch)
			report.Errors = append(report.Errors, model.SymbolError{Symbol: c.Stock.Code, Stage: StageFetch, Error: c.Err.Error()})
			continue
		}
		inputs = append(inputs, analyzer.Input{Stock: c.Stock, Bars: c.Bars})
	}

	results, err := r.Analyzer.AnalyzeBatch(ctx, inputs, r.Opts.Workers)
	if err != nil {
		r.Metrics.RecordRun(metrics.StatusFailed, r.now().Sub(report.StartedAt))
		return nil, fmt.Errorf("analyze: %w", err)
	}

	if r.Opts.Fundamentals {
		report.Errors = append(report.Errors, r.enrich(ctx, results)...)
	}
	report.Errors = append(report.Errors, r.refine(ctx, results)...)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	report.Results = results
	report.Summary = analyzer.Summarize(results)
	r.overview(ctx, report)
	report.FinishedAt = r.now()

	r.notify(ctx, notifier.FormatRunReport(report))
	r.record(ctx, report)

	for _, res := range results {
		r.Metrics.RecordAnalysis(res)
	}
	status := metrics.StatusOK
	if len(report.Errors) > 0 {
		status = metrics.StatusPartial
	}
	r.Metrics.RecordRun(status, report.Duration())

	logger.Info().
		Int("stocks", len(results)).
		Int("errors", len(report.Errors)).
		Float64("avg_score", report.Summary.AverageScore).
		Dur("took", report.Duration()).
		Msg("screening run finished")
	return report, nil
}

// AnalyzeSymbol fetches history for one symbol and returns its refined
// analysis. It does not notify or record.
func (r *Runner) AnalyzeSymbol(ctx context.Context, symbol, name string) (*model.AnalysisResult, error) {
	bars, err := r.Collector.Fetcher.FetchDailyBars(ctx, symbol, r.Opts.HistoryDays)
	if err != nil {
		r.Metrics.RecordError(StageFetch)
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	results := []*model.AnalysisResult{r.Analyzer.Analyze(symbol, bars, name)}
	if r.Opts.Fundamentals {
		if errs := r.enrich(ctx, results); len(errs) > 0 {
			log.Warn().Str("symbol", symbol).Str("err", errs[0].Error).Msg("quote skipped")
		}
	}
	if errs := r.refine(ctx, results); len(errs) > 0 {
		log.Warn().Str("symbol", symbol).Str("err", errs[0].Error).Msg("refinement skipped")
	}
	r.Metrics.RecordAnalysis(results[0])
	return results[0], nil
}

// refine attaches an AI opinion to every computed result in place. A
// disabled refiner ends the loop silently.
func (r *Runner) refine(ctx context.Context, results []*model.AnalysisResult) []model.SymbolError {
	var errs []model.SymbolError
	for i, res := range results {
		if !res.Computed() {
			continue
		}
		op, err := r.Refiner.Refine(ctx, res)
		if errors.Is(err, refiner.ErrDisabled) {
			return errs
		}
		if err != nil {
			if ctx.Err() != nil {
				return errs
			}
			log.Warn().Err(err).Str("symbol", res.Symbol).Str("provider", r.Refiner.Name()).Msg("ai refinement failed")
			r.Metrics.RecordError(StageRefine)
			errs = append(errs, model.SymbolError{Symbol: res.Symbol, Stage: StageRefine, Error: err.Error()})
			continue
		}
		results[i] = res.WithOpinion(op)
	}
	return errs
}

// enrich attaches quote fundamentals to every computed result in place.
// Quote failures leave the result as it was.
func (r *Runner) enrich(ctx context.Context, results []*model.AnalysisResult) []model.SymbolError {
	var errs []model.SymbolError
	for i, res := range results {
		if !res.Computed() {
			continue
		}
		q, err := r.Collector.Fetcher.FetchQuote(ctx, res.Symbol)
		if err != nil {
			if ctx.Err() != nil {
				return errs
			}
			log.Warn().Err(err).Str("symbol", res.Symbol).Msg("quote fetch failed")
			r.Metrics.RecordError(StageQuote)
			errs = append(errs, model.SymbolError{Symbol: res.Symbol, Stage: StageQuote, Error: err.Error()})
			continue
		}
		results[i] = res.WithQuote(q)
	}
	return errs
}

// overview asks the refiner for the run-level portfolio review and market
// sentiment. Both are optional: failures are logged and counted, never
// reported per symbol.
func (r *Runner) overview(ctx context.Context, report *model.RunReport) {
	view, err := r.Refiner.RefinePortfolio(ctx, report.Results)
	switch {
	case errors.Is(err, refiner.ErrDisabled):
		return
	case errors.Is(err, refiner.ErrNoOpinions):
		// nothing was refined; the market read still runs
	case err != nil:
		log.Warn().Err(err).Str("provider", r.Refiner.Name()).Msg("portfolio review failed")
		r.Metrics.RecordError(StagePortfolio)
	default:
		report.Portfolio = view
	}
	if ctx.Err() != nil {
		return
	}

	sentiment, err := r.Refiner.MarketSentiment(ctx, r.indexQuotes(ctx))
	if err != nil {
		log.Warn().Err(err).Str("provider", r.Refiner.Name()).Msg("market sentiment failed")
		r.Metrics.RecordError(StageSentiment)
		return
	}
	report.MarketView = sentiment
}

// indexQuotes quotes Opts.Indices, skipping the ones that fail.
func (r *Runner) indexQuotes(ctx context.Context) []model.Quote {
	quotes := make([]model.Quote, 0, len(r.Opts.Indices))
	for _, sym := range r.Opts.Indices {
		q, err := r.Collector.Fetcher.FetchQuote(ctx, sym)
		if err != nil {
			log.Debug().Err(err).Str("index", sym).Msg("index quote unavailable")
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}

func (r *Runner) notify(ctx context.Context, text string) {
	if err := r.Notifier.Send(ctx, text); err != nil {
		log.Error().Err(err).Str("notifier", r.Notifier.Name()).Msg("send notification")
		r.Metrics.RecordError(StageNotify)
	}
}

func (r *Runner) record(ctx context.Context, report *model.RunReport) {
	if err := r.Recorder.RecordRun(ctx, report); err != nil {
		log.Error().Err(err).Str("run_id", report.ID).Msg("record run")
		r.Metrics.RecordError(StageRecord)
	}
}
