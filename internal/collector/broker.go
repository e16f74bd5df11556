package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"StockScreener/internal/httpx"
	"StockScreener/internal/model"
)

// DefaultBrokerRate is the default number of broker requests per second.
const DefaultBrokerRate = 5

// BrokerFetcher talks to the broker's REST gateway. It serves bars, quotes
// and saved condition searches.
type BrokerFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	limiter *rate.Limiter
}

// NewBrokerFetcher creates a new fetcher with optional proxy support.
func NewBrokerFetcher(baseURL, apiKey, proxyURL string, requestsPerSecond int) *BrokerFetcher {
	if requestsPerSecond <= 0 {
		requestsPerSecond = DefaultBrokerRate
	}
	return &BrokerFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  httpx.NewClient(proxyURL, httpx.DefaultTimeout),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

func (f *BrokerFetcher) Name() string { return "broker" }

// brokerBar is the daily chart row. Prices carry sign markers and
// thousands separators.
type brokerBar struct {
	Date   string `json:"date"` // YYYYMMDD
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

type brokerQuote struct {
	Price         string `json:"price"`
	ChangeRate    string `json:"change_rate"`
	Volume        string `json:"volume"`
	MarketCap     string `json:"market_cap"`
	PER           string `json:"per"`
	PBR           string `json:"pbr"`
	DividendYield string `json:"dividend_yield"`
	Sector        string `json:"sector"`
	Market        string `json:"market"`
}

type brokerSearch struct {
	Stocks []model.Stock `json:"stocks"`
}

func (f *BrokerFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	q := url.Values{"symbol": {symbol}, "limit": {fmt.Sprint(days)}}
	var rows []brokerBar
	if err := f.get(ctx, "/api/v1/bars/daily", q, &rows); err != nil {
		return nil, fmt.Errorf("fetch bars %s: %w", symbol, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fetch bars %s: %w", symbol, ErrNoData)
	}

	bars := make([]model.OHLCV, 0, len(rows))
	for _, r := range rows {
		t, err := time.Parse("20060102", strings.TrimSpace(r.Date))
		if err != nil {
			log.Warn().Str("symbol", symbol).Str("date", r.Date).Msg("skipping bar with bad date")
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   t,
			Open:   ParseBrokerNumber(r.Open),
			High:   ParseBrokerNumber(r.High),
			Low:    ParseBrokerNumber(r.Low),
			Close:  ParseBrokerNumber(r.Close),
			Volume: ParseBrokerNumber(r.Volume),
		})
	}
	bars = NormalizeBars(bars)
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func (f *BrokerFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	var raw brokerQuote
	if err := f.get(ctx, "/api/v1/quote", url.Values{"symbol": {symbol}}, &raw); err != nil {
		return model.Quote{}, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	return model.Quote{
		Symbol:        symbol,
		Price:         ParseBrokerNumber(raw.Price),
		ChangeRate:    ParseSignedBrokerNumber(raw.ChangeRate),
		Volume:        ParseBrokerNumber(raw.Volume),
		MarketCap:     ParseBrokerNumber(raw.MarketCap),
		PER:           ParseSignedBrokerNumber(raw.PER),
		PBR:           ParseBrokerNumber(raw.PBR),
		DividendYield: ParseBrokerNumber(raw.DividendYield),
		Sector:        strings.TrimSpace(raw.Sector),
		Market:        strings.TrimSpace(raw.Market),
		FetchedAt:     time.Now(),
	}, nil
}

// Search runs the saved condition with the given name.
func (f *BrokerFetcher) Search(ctx context.Context, condition string) ([]model.Stock, error) {
	var res brokerSearch
	if err := f.get(ctx, "/api/v1/conditions/search", url.Values{"name": {condition}}, &res); err != nil {
		return nil, fmt.Errorf("condition search %q: %w", condition, err)
	}
	stocks := make([]model.Stock, 0, len(res.Stocks))
	for _, s := range res.Stocks {
		s.Code = strings.TrimSpace(s.Code)
		if s.Code == "" {
			continue
		}
		s.Name = strings.TrimSpace(s.Name)
		stocks = append(stocks, s)
	}
	return stocks, nil
}

func (f *BrokerFetcher) get(ctx context.Context, path string, q url.Values, out any) error {
	if err := f.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	endpoint := f.BaseURL + path + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
