package strategy

import (
	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// VolatilityWindow is the number of closes used for price volatility.
const VolatilityWindow = 20

// Volatility returns the coefficient of variation (stddev/mean*100) of the
// last VolatilityWindow closes. ok is false without enough data or when the
// mean is zero.
func Volatility(closes []float64) (pct float64, ok bool) {
	n := len(closes)
	if n < VolatilityWindow {
		return 0, false
	}
	window := closes[n-VolatilityWindow:]
	mean := calculator.Mean(window)
	if mean == 0 {
		return 0, false
	}
	return calculator.StdDev(window) / mean * 100, true
}

// RiskScore accumulates the risk counter from the latest indicator values.
func RiskScore(snap *model.IndicatorSnapshot) int {
	risk := 0
	if calculator.Last(snap.RSI) > 70 {
		risk += 30
	}
	if calculator.Last(snap.Close) >= calculator.Last(snap.BBUpper)*0.98 {
		risk += 25
	}
	if calculator.Last(snap.StochK) > 80 && calculator.Last(snap.StochD) > 80 {
		risk += 20
	}
	if v, ok := Volatility(snap.Close); ok && v > 5 {
		risk += 15
	}
	return risk
}

// ClassifyRisk maps the indicator state to a three-level risk label.
func ClassifyRisk(snap *model.IndicatorSnapshot) model.RiskLevel {
	return riskLabel(RiskScore(snap))
}

func riskLabel(score int) model.RiskLevel {
	switch {
	case score < 30:
		return model.RiskLow
	case score < 60:
		return model.RiskModerate
	}
	return model.RiskHigh
}
