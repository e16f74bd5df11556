package collector

import (
	"context"
	"fmt"
	"math"
	"time"

	"StockScreener/internal/model"
)

// MockStocks is the watchlist the mock screener returns.
var MockStocks = []model.Stock{
	{Code: "005930", Name: "Samsung Electronics"},
	{Code: "000660", Name: "SK hynix"},
	{Code: "035420", Name: "NAVER"},
	{Code: "005490", Name: "POSCO Holdings"},
	{Code: "051910", Name: "LG Chem"},
	{Code: "006400", Name: "Samsung SDI"},
	{Code: "035720", Name: "Kakao"},
	{Code: "105560", Name: "KB Financial"},
	{Code: "055550", Name: "Shinhan Financial"},
	{Code: "096770", Name: "SK Innovation"},
}

// MockFetcher returns deterministic data for development and testing.
// Bars for a symbol depend only on the symbol and the requested count.
type MockFetcher struct {
	Price     float64
	DailyData map[string][]model.OHLCV
	Err       error
	End       time.Time
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, days int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.DailyData[symbol]; ok {
		return bars, nil
	}
	return generateMockBars(symbol, m.basePrice(symbol), days, m.end()), nil
}

func (m *MockFetcher) FetchQuote(ctx context.Context, symbol string) (model.Quote, error) {
	bars, err := m.FetchDailyBars(ctx, symbol, 2)
	if err != nil {
		return model.Quote{}, err
	}
	if len(bars) == 0 {
		return model.Quote{}, fmt.Errorf("mock quote %s: %w", symbol, ErrNoData)
	}
	last := bars[len(bars)-1]
	q := model.Quote{Symbol: symbol, Price: last.Close, Volume: last.Volume, Market: "KOSPI", FetchedAt: m.end()}

	// valuation fields step with the watchlist position, unknown symbols
	// fall back to their seed
	i := float64(seed(symbol) % 10)
	for idx, s := range MockStocks {
		if s.Code == symbol {
			i = float64(idx)
			break
		}
	}
	q.MarketCap = 50_000_000 + i*10_000_000
	q.PER = 15.5 + i*2.5
	q.PBR = 1.2 + i*0.3
	q.DividendYield = 2.5 + i*0.5
	q.Sector = mockSectors[symbol]
	if q.Sector == "" {
		q.Sector = "Other"
	}
	return q, nil
}

var mockSectors = map[string]string{
	"005930": "Semiconductors",
	"000660": "Semiconductors",
	"035420": "Internet",
	"005490": "Steel",
	"051910": "Chemicals",
	"006400": "Batteries",
	"035720": "Internet",
	"105560": "Banks",
	"055550": "Banks",
	"096770": "Energy",
}

// Search returns MockStocks.
func (m *MockFetcher) Search(_ context.Context, _ string) ([]model.Stock, error) {
	return append([]model.Stock(nil), MockStocks...), nil
}

func (m *MockFetcher) basePrice(symbol string) float64 {
	if m.Price > 0 {
		return m.Price
	}
	return 10000 + float64(seed(symbol)%90)*1000
}

func (m *MockFetcher) end() time.Time {
	if m.End.IsZero() {
		return time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	}
	return m.End
}

func seed(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// generateMockBars draws a drifting sine wave so that different symbols land
// in different indicator regimes.
func generateMockBars(symbol string, basePrice float64, count int, end time.Time) []model.OHLCV {
	s := seed(symbol)
	phase := float64(s%360) * math.Pi / 180
	drift := (float64(s%7) - 3) * 0.001
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		x := float64(i)
		p := basePrice * (1 + drift*x + 0.05*math.Sin(x/6+phase))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.01,
			Low:    p * 0.99,
			Close:  p,
			Volume: 100000 + float64((s+uint32(i)*31)%50)*2000,
		}
	}
	return bars
}
