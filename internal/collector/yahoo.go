package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"StockScreener/internal/httpx"
	"StockScreener/internal/model"
)

// DefaultYahooURL is the public chart endpoint base.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
// Bare six-digit codes are mapped to KOSPI tickers (".KS").
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	Suffix    string
	SymbolMap map[string]string
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: DefaultYahooURL,
		Client:  httpx.NewClient(proxyURL, httpx.DefaultTimeout),
		Suffix:  ".KS",
		SymbolMap: map[string]string{
			"KOSPI":  "^KS11",
			"KOSDAQ": "^KQ11",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	if f.Suffix != "" && len(symbol) == 6 && !strings.Contains(symbol, ".") && isDigits(symbol) {
		return symbol + f.Suffix
	}
	return symbol
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type yahooSeries struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

type yahooMeta struct {
	Price         float64 `json:"regularMarketPrice"`
	PreviousClose float64 `json:"chartPreviousClose"`
	Volume        float64 `json:"regularMarketVolume"`
	Exchange      string  `json:"fullExchangeName"`
}

type yahooResult struct {
	Meta       yahooMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []yahooSeries `json:"quote"`
	} `json:"indicators"`
}

// yahooEnvelope is the /v8/finance/chart response.
type yahooEnvelope struct {
	Chart struct {
		Result []yahooResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// valueAt reads a nullable column; nulls read as 0.
func valueAt(col []*float64, i int) float64 {
	if i < len(col) && col[i] != nil {
		return *col[i]
	}
	return 0
}

// chartRanges maps a bar count to the smallest Yahoo range covering it.
var chartRanges = []struct {
	days int
	rng  string
}{
	{20, "1mo"}, {60, "3mo"}, {120, "6mo"}, {250, "1y"},
}

func chartRange(days int) string {
	for _, r := range chartRanges {
		if days <= r.days {
			return r.rng
		}
	}
	return "2y"
}

func (f *YahooFetcher) chart(ctx context.Context, symbol, rng string) (*yahooResult, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), rng)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// the chart API rejects requests without a browser UA
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	var env yahooEnvelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	switch {
	case env.Chart.Error != nil:
		return nil, fmt.Errorf("yahoo %s: %s", symbol, env.Chart.Error.Description)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("yahoo %s: status %d", symbol, resp.StatusCode)
	case decodeErr != nil:
		return nil, fmt.Errorf("yahoo %s: decode: %w", symbol, decodeErr)
	case len(env.Chart.Result) == 0:
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}
	return &env.Chart.Result[0], nil
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	res, err := f.chart(ctx, symbol, chartRange(days))
	if err != nil {
		return nil, err
	}
	if len(res.Timestamp) == 0 || len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	cols := res.Indicators.Quote[0]
	bars := make([]model.OHLCV, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		bar := model.OHLCV{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   valueAt(cols.Open, i),
			High:   valueAt(cols.High, i),
			Low:    valueAt(cols.Low, i),
			Close:  valueAt(cols.Close, i),
			Volume: valueAt(cols.Volume, i),
		}
		// market holidays come back as all-null rows
		if bar.Open == 0 && bar.High == 0 && bar.Low == 0 && bar.Close == 0 {
			continue
		}
		bars = append(bars, bar)
	}
	bars = NormalizeBars(bars)
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func (f *YahooFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	res, err := f.chart(ctx, symbol, "1d")
	if err != nil {
		return model.Quote{}, err
	}
	meta := res.Meta
	if meta.Price == 0 {
		return model.Quote{}, fmt.Errorf("yahoo quote %s: %w", symbol, ErrNoData)
	}
	q := model.Quote{
		Symbol:    symbol,
		Price:     meta.Price,
		Volume:    meta.Volume,
		Market:    meta.Exchange,
		FetchedAt: time.Now(),
	}
	if meta.PreviousClose > 0 {
		q.ChangeRate = (meta.Price - meta.PreviousClose) / meta.PreviousClose * 100
	}
	return q, nil
}
