package model

import "time"

// OHLCV represents a single candlestick bar. The validate tags apply to
// bars arriving over the API.
type OHLCV struct {
	Time   time.Time `json:"date"`
	Open   float64   `json:"open" validate:"gte=0"`
	High   float64   `json:"high" validate:"gte=0"`
	Low    float64   `json:"low" validate:"gte=0"`
	Close  float64   `json:"close" validate:"gte=0"`
	Volume float64   `json:"volume" validate:"gte=0"`
}

// Stock is one hit of a condition search.
type Stock struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Quote holds the quote and valuation fields a data source returns next to
// the bars. Sources fill what they have; missing numbers stay zero.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangeRate    float64   `json:"change_rate"`
	Volume        float64   `json:"volume"`
	MarketCap     float64   `json:"market_cap"`
	PER           float64   `json:"per,omitempty"`
	PBR           float64   `json:"pbr,omitempty"`
	DividendYield float64   `json:"dividend_yield,omitempty"`
	Sector        string    `json:"sector,omitempty"`
	Market        string    `json:"market,omitempty"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Fundamentals returns the valuation part of the quote.
func (q Quote) Fundamentals() *Fundamentals {
	return &Fundamentals{
		MarketCap:     q.MarketCap,
		ChangeRate:    q.ChangeRate,
		PER:           q.PER,
		PBR:           q.PBR,
		DividendYield: q.DividendYield,
		Sector:        q.Sector,
		Market:        q.Market,
	}
}
