package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/analyzer"
	"StockScreener/internal/collector"
	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/refiner"
)

type failingFetcher struct {
	collector.MockFetcher
	fail map[string]bool
}

func (f *failingFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if f.fail[symbol] {
		return nil, errors.New("gateway timeout")
	}
	return f.MockFetcher.FetchDailyBars(ctx, symbol, days)
}

type quotelessFetcher struct {
	collector.MockFetcher
}

func (quotelessFetcher) FetchQuote(context.Context, string) (model.Quote, error) {
	return model.Quote{}, errors.New("quote service down")
}

type errScreener struct{}

func (errScreener) Search(context.Context, string) ([]model.Stock, error) {
	return nil, errors.New("condition not found")
}

type fakeRefiner struct {
	fail         map[string]bool
	failOverview bool

	prompts   []*model.AnalysisResult
	reviewed  []*model.AnalysisResult
	indices   []model.Quote
	sentiment int
}

func (f *fakeRefiner) Refine(_ context.Context, r *model.AnalysisResult) (*model.Opinion, error) {
	f.prompts = append(f.prompts, r)
	if f.fail[r.Symbol] {
		return nil, errors.New("rate limited")
	}
	return &model.Opinion{Recommendation: "BUY", Confidence: 0.6}, nil
}

func (f *fakeRefiner) RefinePortfolio(_ context.Context, results []*model.AnalysisResult) (*model.PortfolioView, error) {
	if f.failOverview {
		return nil, errors.New("overloaded")
	}
	f.reviewed = results
	s := refiner.SummarizePortfolio(results)
	if s.TotalStocks == 0 {
		return nil, refiner.ErrNoOpinions
	}
	return &model.PortfolioView{Score: 64, RiskLevel: "MODERATE", Summary: s}, nil
}

func (f *fakeRefiner) MarketSentiment(_ context.Context, indices []model.Quote) (*model.MarketSentiment, error) {
	f.sentiment++
	if f.failOverview {
		return nil, errors.New("overloaded")
	}
	f.indices = indices
	return &model.MarketSentiment{Score: 0.3, Outlook: "steady", Indices: indices}, nil
}

func (f *fakeRefiner) Name() string { return "fake" }

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func (c *captureNotifier) Name() string { return "capture" }

type captureRecorder struct {
	reports []*model.RunReport
}

func (c *captureRecorder) RecordRun(_ context.Context, r *model.RunReport) error {
	c.reports = append(c.reports, r)
	return nil
}

func (c *captureRecorder) LatestResults(context.Context, int) ([]*model.AnalysisResult, error) {
	return nil, nil
}

func (c *captureRecorder) Close() error { return nil }

func metricValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

type fixture struct {
	runner   *Runner
	notifier *captureNotifier
	recorder *captureRecorder
	metrics  *metrics.Recorder
}

func newFixture(screener collector.Screener, fetcher collector.Fetcher, ref refiner.Refiner) *fixture {
	f := &fixture{
		notifier: &captureNotifier{},
		recorder: &captureRecorder{},
		metrics:  metrics.New(),
	}
	f.runner = NewRunner(
		collector.NewCollector(fetcher, screener),
		analyzer.New(),
		ref,
		f.notifier,
		f.recorder,
		f.metrics,
		Options{Condition: "breakout", MaxStocks: 3},
	)
	return f
}

func TestRun_FullPass(t *testing.T) {
	fetcher := &failingFetcher{fail: map[string]bool{"000660": true}}
	fetcher.DailyData = map[string][]model.OHLCV{"035420": make([]model.OHLCV, 5)}
	screener := &collector.StaticScreener{Stocks: collector.MockStocks}
	ref := &fakeRefiner{}
	f := newFixture(screener, fetcher, ref)

	report, err := f.runner.Run(context.Background(), model.TriggerManual)
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, model.TriggerManual, report.Trigger)
	assert.Equal(t, "breakout", report.Condition)

	// MaxStocks=3 keeps 005930, 000660 and 035420; 000660 fails to fetch.
	require.Len(t, report.Results, 2)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, model.SymbolError{Symbol: "000660", Stage: StageFetch, Error: "gateway timeout"}, report.Errors[0])

	for i := 1; i < len(report.Results); i++ {
		assert.GreaterOrEqual(t, report.Results[i-1].Score(), report.Results[i].Score())
	}
	bySymbol := map[string]*model.AnalysisResult{}
	for _, r := range report.Results {
		bySymbol[r.Symbol] = r
	}
	require.Contains(t, bySymbol, "005930")
	require.Contains(t, bySymbol, "035420")
	assert.NotNil(t, bySymbol["005930"].Opinion)
	assert.Equal(t, model.StatusInsufficientData, bySymbol["035420"].Status)
	assert.Nil(t, bySymbol["035420"].Opinion)

	require.NotNil(t, report.Portfolio)
	assert.Equal(t, 1, report.Portfolio.Summary.TotalStocks)
	require.NotNil(t, report.MarketView)
	require.Len(t, ref.indices, 2)
	assert.Equal(t, "KOSPI", ref.indices[0].Symbol)

	assert.Equal(t, 2, report.Summary.TotalStocks)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	require.Len(t, f.notifier.msgs, 1)
	assert.Contains(t, f.notifier.msgs[0], "Stock screening")
	assert.Contains(t, f.notifier.msgs[0], "insufficient data")
	assert.Contains(t, f.notifier.msgs[0], "Portfolio review")
	assert.Contains(t, f.notifier.msgs[0], "Market sentiment")
	require.Len(t, f.recorder.reports, 1)
	assert.Same(t, report, f.recorder.reports[0])

	reg := f.metrics.Registry()
	assert.Equal(t, 1.0, metricValue(t, reg, "screener_runs_total", "partial"))
	assert.Equal(t, 1.0, metricValue(t, reg, "screener_collaborator_errors_total", StageFetch))
}

func TestRun_RefineFailureIsRecorded(t *testing.T) {
	screener := &collector.StaticScreener{Stocks: collector.MockStocks[:2]}
	ref := &fakeRefiner{fail: map[string]bool{"000660": true}}
	f := newFixture(screener, &collector.MockFetcher{}, ref)

	report, err := f.runner.Run(context.Background(), model.TriggerScheduled)
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, StageRefine, report.Errors[0].Stage)
	assert.Equal(t, "000660", report.Errors[0].Symbol)
	assert.Equal(t, 1.0, metricValue(t, f.metrics.Registry(), "screener_collaborator_errors_total", StageRefine))
}

func TestRun_FundamentalsReachRefiner(t *testing.T) {
	screener := &collector.StaticScreener{Stocks: collector.MockStocks[:2]}
	ref := &fakeRefiner{}
	f := newFixture(screener, &collector.MockFetcher{}, ref)
	f.runner.Opts.Fundamentals = true

	report, err := f.runner.Run(context.Background(), model.TriggerManual)
	require.NoError(t, err)
	assert.Empty(t, report.Errors)

	require.Len(t, ref.prompts, 2)
	for _, r := range ref.prompts {
		require.NotNil(t, r.Market.Fundamentals, r.Symbol)
		assert.Equal(t, "Semiconductors", r.Market.Fundamentals.Sector)
		assert.Greater(t, r.Market.Fundamentals.PER, 0.0)
	}
	for _, r := range report.Results {
		assert.Equal(t, "Semiconductors", r.Sector())
	}
	assert.Equal(t, map[string]int{"Semiconductors": 2}, report.Portfolio.Summary.Sectors)
}

func TestRun_QuoteFailureKeepsResult(t *testing.T) {
	screener := &collector.StaticScreener{Stocks: collector.MockStocks[:1]}
	f := newFixture(screener, &quotelessFetcher{}, &fakeRefiner{})
	f.runner.Opts.Fundamentals = true

	report, err := f.runner.Run(context.Background(), model.TriggerManual)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Computed())
	assert.Nil(t, report.Results[0].Market.Fundamentals)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, StageQuote, report.Errors[0].Stage)
	assert.Empty(t, report.MarketView.Indices)
}

func TestRun_OverviewFailureIsNotFatal(t *testing.T) {
	screener := &collector.StaticScreener{Stocks: collector.MockStocks[:2]}
	ref := &fakeRefiner{failOverview: true}
	f := newFixture(screener, &collector.MockFetcher{}, ref)

	report, err := f.runner.Run(context.Background(), model.TriggerManual)
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	assert.Nil(t, report.Portfolio)
	assert.Nil(t, report.MarketView)
	assert.Equal(t, 1, ref.sentiment)
	reg := f.metrics.Registry()
	assert.Equal(t, 1.0, metricValue(t, reg, "screener_collaborator_errors_total", StagePortfolio))
	assert.Equal(t, 1.0, metricValue(t, reg, "screener_collaborator_errors_total", StageSentiment))
	assert.Equal(t, 1.0, metricValue(t, reg, "screener_runs_total", "ok"))
}

func TestNewRunner_NilMetrics(t *testing.T) {
	screener := &collector.StaticScreener{Stocks: collector.MockStocks[:1]}
	r := NewRunner(collector.NewCollector(&collector.MockFetcher{}, screener), analyzer.New(),
		nil, &captureNotifier{}, &captureRecorder{}, nil, Options{})
	require.NotNil(t, r.Metrics)

	_, err := r.Run(context.Background(), model.TriggerManual)
	require.NoError(t, err)

	r.Collector.Screener = errScreener{}
	_, err = r.Run(context.Background(), model.TriggerManual)
	assert.Error(t, err)
}

func TestRun_DisabledRefiner(t *testing.T) {
	screener := &collector.StaticScreener{Stocks: collector.MockStocks[:2]}
	f := newFixture(screener, &collector.MockFetcher{}, nil)

	report, err := f.runner.Run(context.Background(), model.TriggerAPI)
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	for _, r := range report.Results {
		assert.Nil(t, r.Opinion)
		assert.True(t, r.Computed())
	}
	assert.Equal(t, 1.0, metricValue(t, f.metrics.Registry(), "screener_runs_total", "ok"))
}

func TestRun_EmptySearchWarns(t *testing.T) {
	f := newFixture(&collector.StaticScreener{}, &collector.MockFetcher{}, nil)

	report, err := f.runner.Run(context.Background(), model.TriggerScheduled)
	require.NoError(t, err)
	assert.Empty(t, report.Results)
	assert.Equal(t, "no stocks to analyze", report.Summary.Text)
	require.Len(t, f.notifier.msgs, 1)
	assert.Contains(t, f.notifier.msgs[0], "No stocks matched")
	assert.Equal(t, 1.0, metricValue(t, f.metrics.Registry(), "screener_runs_total", "empty"))
}

func TestRun_ScreenError(t *testing.T) {
	f := newFixture(errScreener{}, &collector.MockFetcher{}, nil)

	_, err := f.runner.Run(context.Background(), model.TriggerCommand)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "condition not found")
	require.Len(t, f.notifier.msgs, 1)
	assert.True(t, strings.HasPrefix(f.notifier.msgs[0], "❌"))
	assert.Empty(t, f.recorder.reports)
}

func TestRun_RejectsConcurrentRun(t *testing.T) {
	f := newFixture(&collector.StaticScreener{}, &collector.MockFetcher{}, nil)
	f.runner.mu.Lock()
	defer f.runner.mu.Unlock()

	_, err := f.runner.Run(context.Background(), model.TriggerManual)
	assert.ErrorIs(t, err, ErrRunInProgress)
}

func TestRun_CancelledContext(t *testing.T) {
	screener := &collector.StaticScreener{Stocks: collector.MockStocks[:2]}
	f := newFixture(screener, &collector.MockFetcher{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.runner.Run(ctx, model.TriggerManual)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeSymbol(t *testing.T) {
	f := newFixture(&collector.StaticScreener{}, &collector.MockFetcher{}, &fakeRefiner{})

	res, err := f.runner.AnalyzeSymbol(context.Background(), "005930", "Samsung Electronics")
	require.NoError(t, err)
	assert.True(t, res.Computed())
	assert.Equal(t, "Samsung Electronics", res.Name)
	require.NotNil(t, res.Opinion)
	assert.Empty(t, f.notifier.msgs)

	f = newFixture(&collector.StaticScreener{}, &collector.MockFetcher{Err: errors.New("down")}, nil)
	_, err = f.runner.AnalyzeSymbol(context.Background(), "005930", "")
	assert.Error(t, err)
}
