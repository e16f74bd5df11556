package model

// Signal is a named buy condition detected at the latest bar.
type Signal string

const (
	SignalGoldenCross      Signal = "golden cross"
	SignalRSIOversold      Signal = "RSI oversold"
	SignalRSIRecovery      Signal = "RSI recovery"
	SignalMACDBullishCross Signal = "MACD bullish cross"
	SignalBollingerLower   Signal = "Bollinger lower touch"
	SignalVolumeSurge      Signal = "volume surge"
	SignalStochOversold    Signal = "stochastic oversold"
)

// RiskLevel is the three-level risk label.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// Recommendation is the categorical outcome of an analysis.
type Recommendation string

const (
	RecStrongBuy       Recommendation = "strong buy"
	RecBuy             Recommendation = "buy"
	RecHold            Recommendation = "hold"
	RecConsiderSelling Recommendation = "consider selling"
	RecWatch           Recommendation = "watch"
)

// ScoreBreakdown holds the named sub-scores and the clamped overall score.
type ScoreBreakdown struct {
	Base       float64 `json:"base_score"`
	BuySignals float64 `json:"buy_signals_score"`
	Trend      float64 `json:"trend_score"`
	RSI        float64 `json:"rsi_score"`
	MACD       float64 `json:"macd_score"`
	Volume     float64 `json:"volume_score"`
	Bollinger  float64 `json:"bollinger_score"`
	Stochastic float64 `json:"stochastic_score"`
	Overall    float64 `json:"overall_score"`
}

// Sum returns the unclamped total of all sub-scores.
func (b ScoreBreakdown) Sum() float64 {
	return b.Base + b.BuySignals + b.Trend + b.RSI + b.MACD + b.Volume + b.Bollinger + b.Stochastic
}
