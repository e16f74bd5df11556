package analyzer

import (
	"fmt"
	"strings"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

const (
	unavailable = "unavailable"

	supportWindow = 20
	trendLookback = 5
)

func buildNarrative(snap *model.IndicatorSnapshot, bars []model.OHLCV, signals []model.Signal, cv *model.CurrentValues) *model.Narrative {
	return &model.Narrative{
		PriceTrend:        priceTrend(snap.Close),
		VolumeTrend:       volumeTrend(snap.Volume),
		MAPosition:        maPosition(snap),
		Volatility:        volatilityLabel(snap.Close),
		RSIStatus:         rsiStatus(cv.RSI),
		MACDStatus:        macdStatus(cv.MACD, cv.MACDSignal),
		BollingerPosition: bollingerPosition(snap),
		SupportResistance: supportResistance(bars),
		Momentum:          momentum(snap),
		BuySignalsSummary: signalsSummary(signals),
	}
}

// priceTrend compares the last close with the close trendLookback-1 bars back.
func priceTrend(closes []float64) string {
	n := len(closes)
	if n < trendLookback {
		return unavailable
	}
	if closes[n-1] > closes[n-trendLookback] {
		return "up"
	}
	return "down"
}

// volumeTrend compares the mean of the last 3 volumes with the 7 before.
func volumeTrend(vol []float64) string {
	n := len(vol)
	if n < 10 {
		return unavailable
	}
	if calculator.Mean(vol[n-3:]) > calculator.Mean(vol[n-10:n-3]) {
		return "increasing"
	}
	return "decreasing"
}

func maPosition(snap *model.IndicatorSnapshot) string {
	s5 := calculator.Last(snap.SMA5)
	s20 := calculator.Last(snap.SMA20)
	s60 := calculator.Last(snap.SMA60)
	switch {
	case s5 > s20 && s20 > s60:
		return "strong up"
	case s5 < s20 && s20 < s60:
		return "strong down"
	case s5 > s20:
		return "up"
	}
	return "down"
}

func volatilityLabel(closes []float64) string {
	v, ok := strategy.Volatility(closes)
	switch {
	case !ok:
		return "normal"
	case v > 5:
		return "high"
	case v < 2:
		return "low"
	}
	return "normal"
}

func rsiStatus(rsi model.Reading) string {
	switch {
	case !rsi.Valid():
		return unavailable
	case rsi > 70:
		return "overbought"
	case rsi < 30:
		return "oversold"
	}
	return "neutral"
}

func macdStatus(line, signal model.Reading) string {
	if line > signal {
		return "up"
	}
	return "down"
}

func bollingerPosition(snap *model.IndicatorSnapshot) string {
	price := calculator.Last(snap.Close)
	upper := calculator.Last(snap.BBUpper)
	middle := calculator.Last(snap.BBMiddle)
	lower := calculator.Last(snap.BBLower)
	if !model.Reading(upper).Valid() || !model.Reading(lower).Valid() {
		return unavailable
	}
	switch {
	case price > upper:
		return "above upper band"
	case price > middle:
		return "above middle"
	case price > lower:
		return "below middle"
	}
	return "near lower band"
}

func supportResistance(bars []model.OHLCV) *model.SupportResistance {
	if len(bars) < supportWindow {
		return nil
	}
	high, low, err := calculator.TrailingRange(bars, supportWindow)
	if err != nil {
		return nil
	}
	return &model.SupportResistance{
		Support:         low,
		Resistance:      high,
		CurrentPosition: calculator.RangePosition(bars[len(bars)-1].Close, high, low),
	}
}

// momentum combines the percent change over the trend lookback with the
// direction of the MACD histogram.
func momentum(snap *model.IndicatorSnapshot) string {
	closes := snap.Close
	n := len(closes)
	if n < trendLookback || closes[n-trendLookback] == 0 {
		return unavailable
	}
	change := (closes[n-1] - closes[n-trendLookback]) / closes[n-trendLookback] * 100

	dir := "down"
	if calculator.At(snap.MACDHist, n-1) > calculator.At(snap.MACDHist, n-2) {
		dir = "up"
	}
	switch {
	case change > 3:
		return fmt.Sprintf("strong upward momentum (%+.1f%%, MACD %s)", change, dir)
	case change > 0:
		return fmt.Sprintf("upward momentum (%+.1f%%, MACD %s)", change, dir)
	case change < -3:
		return fmt.Sprintf("strong downward momentum (%+.1f%%, MACD %s)", change, dir)
	}
	return fmt.Sprintf("weak downward momentum (%+.1f%%, MACD %s)", change, dir)
}

func signalsSummary(signals []model.Signal) string {
	if len(signals) == 0 {
		return "no buy signals"
	}
	top := signals
	if len(top) > 3 {
		top = top[:3]
	}
	names := make([]string, len(top))
	for i, s := range top {
		names[i] = string(s)
	}
	return fmt.Sprintf("%d buy signals: %s", len(signals), strings.Join(names, ", "))
}
