package model

import (
	"encoding/json"
	"math"
	"time"
)

// AnalysisStatus tags whether an AnalysisResult was computed or is the
// insufficient-data default.
type AnalysisStatus string

const (
	StatusComputed         AnalysisStatus = "computed"
	StatusInsufficientData AnalysisStatus = "insufficient_data"
)

// Reading is an indicator value that may be undefined (NaN or Inf).
// Undefined readings encode as JSON null.
type Reading float64

// Valid reports whether the reading holds a finite value.
func (r Reading) Valid() bool {
	f := float64(r)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(r))
}

func (r *Reading) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Reading(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Reading(f)
	return nil
}

// CurrentValues are the latest values of the key indicators.
type CurrentValues struct {
	RSI          Reading `json:"rsi"`
	MACD         Reading `json:"macd"`
	MACDSignal   Reading `json:"macd_signal"`
	SMA5         Reading `json:"sma_5"`
	SMA20        Reading `json:"sma_20"`
	CurrentPrice float64 `json:"current_price"`
	StochK       Reading `json:"stoch_k"`
	StochD       Reading `json:"stoch_d"`
}

// SupportResistance describes the trailing 20-bar trading range.
type SupportResistance struct {
	Support         float64 `json:"support_level"`
	Resistance      float64 `json:"resistance_level"`
	CurrentPosition float64 `json:"current_position"` // percent between support and resistance
}

// Narrative is the derived descriptor block consumed by the AI refiner and
// the notification formatters.
type Narrative struct {
	PriceTrend        string             `json:"price_trend"`
	VolumeTrend       string             `json:"volume_trend"`
	MAPosition        string             `json:"moving_average_position"`
	Volatility        string             `json:"volatility"`
	RSIStatus         string             `json:"rsi_status"`
	MACDStatus        string             `json:"macd_status"`
	BollingerPosition string             `json:"bollinger_position"`
	SupportResistance *SupportResistance `json:"support_resistance,omitempty"`
	Momentum          string             `json:"momentum_analysis"`
	BuySignalsSummary string             `json:"buy_signals_summary"`
}

// MarketSnapshot holds quote-like fields derived from the price history.
// Fundamentals is set only when a quote was fetched for the symbol.
type MarketSnapshot struct {
	CurrentPrice float64       `json:"current_price"`
	Volume       float64       `json:"volume"`
	High52w      float64       `json:"high_52w"`
	Low52w       float64       `json:"low_52w"`
	AvgVolume20d float64       `json:"avg_volume_20d"`
	Fundamentals *Fundamentals `json:"fundamentals,omitempty"`
}

// Fundamentals are the valuation fields of a fetched quote.
type Fundamentals struct {
	MarketCap     float64 `json:"market_cap"`
	ChangeRate    float64 `json:"change_rate"`
	PER           float64 `json:"per"`
	PBR           float64 `json:"pbr"`
	DividendYield float64 `json:"dividend_yield"`
	Sector        string  `json:"sector,omitempty"`
	Market        string  `json:"market,omitempty"`
}

// AnalysisResult is the terminal record per stock. It is not mutated after
// assembly; the pipeline attaches an Opinion to a copy.
type AnalysisResult struct {
	Symbol         string          `json:"stock_code"`
	Name           string          `json:"stock_name,omitempty"`
	Status         AnalysisStatus  `json:"status"`
	Scores         ScoreBreakdown  `json:"detailed_scores"`
	Signals        []Signal        `json:"buy_signals"`
	Risk           RiskLevel       `json:"risk_level"`
	Indicators     *CurrentValues  `json:"indicators,omitempty"`
	Recommendation Recommendation  `json:"recommendation"`
	AnalyzedAt     time.Time       `json:"analysis_time"`
	Narrative      *Narrative      `json:"technical_summary,omitempty"`
	Market         *MarketSnapshot `json:"market_data,omitempty"`
	Opinion        *Opinion        `json:"ai_opinion,omitempty"`
}

// Score returns the overall technical score.
func (r *AnalysisResult) Score() float64 {
	return r.Scores.Overall
}

// Computed reports whether the result came from a full analysis.
func (r *AnalysisResult) Computed() bool {
	return r.Status == StatusComputed
}

// DisplayName returns the name when known, else the symbol.
func (r *AnalysisResult) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Symbol
}

// WithOpinion returns a copy of the result carrying the given opinion.
func (r AnalysisResult) WithOpinion(op *Opinion) *AnalysisResult {
	r.Opinion = op
	return &r
}

// WithQuote returns a copy of the result whose market snapshot carries the
// quote's fundamentals. Results without a snapshot are copied unchanged.
func (r AnalysisResult) WithQuote(q Quote) *AnalysisResult {
	if r.Market != nil {
		m := *r.Market
		m.Fundamentals = q.Fundamentals()
		r.Market = &m
	}
	return &r
}

// Sector returns the sector from the attached fundamentals, if any.
func (r *AnalysisResult) Sector() string {
	if r.Market == nil || r.Market.Fundamentals == nil {
		return ""
	}
	return r.Market.Fundamentals.Sector
}
