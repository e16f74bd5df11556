package strategy

import (
	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// BaseScore is the neutral starting point of every score.
const BaseScore = 50.0

// Score maps the indicator state and detected signals to a ScoreBreakdown.
func Score(snap *model.IndicatorSnapshot, signals []model.Signal) model.ScoreBreakdown {
	b := model.ScoreBreakdown{
		Base:       BaseScore,
		BuySignals: scoreBuySignals(signals),
		Trend:      scoreTrend(snap),
		RSI:        scoreRSI(calculator.Last(snap.RSI)),
		MACD:       scoreMACD(snap),
		Volume:     scoreVolume(snap.Volume),
		Bollinger:  scoreBollinger(snap),
		Stochastic: scoreStochastic(calculator.Last(snap.StochK), calculator.Last(snap.StochD)),
	}
	b.Overall = clamp(b.Sum(), 0, 100)
	return b
}

// scoreBuySignals awards 10 per signal, capped at 30.
func scoreBuySignals(signals []model.Signal) float64 {
	return min(30, 10*float64(len(signals)))
}

// scoreTrend scores moving-average alignment.
func scoreTrend(snap *model.IndicatorSnapshot) float64 {
	s5 := calculator.Last(snap.SMA5)
	s20 := calculator.Last(snap.SMA20)
	s60 := calculator.Last(snap.SMA60)
	switch {
	case s5 > s20 && s20 > s60:
		return 20
	case s5 > s20:
		return 15
	case s5 < s20:
		return -10
	}
	return 0
}

func scoreRSI(rsi float64) float64 {
	switch {
	case rsi >= 40 && rsi <= 60:
		return 15
	case rsi >= 30 && rsi < 40:
		return 10
	case rsi > 60 && rsi <= 70:
		return 5
	case rsi < 30:
		return -5
	case rsi > 70:
		return -15
	}
	return 0
}

// scoreMACD gives +10 above the signal line, -5 otherwise, plus 2 for a
// rising MACD line.
func scoreMACD(snap *model.IndicatorSnapshot) float64 {
	n := snap.Len()
	macd := calculator.At(snap.MACD, n-1)
	score := -5.0
	if macd > calculator.At(snap.MACDSignal, n-1) {
		score = 10
	}
	if macd-calculator.At(snap.MACD, n-2) > 0 {
		score += 2
	}
	return score
}

// scoreVolume compares the mean of the last 5 volumes with the 5 before.
func scoreVolume(vol []float64) float64 {
	n := len(vol)
	if n < 10 {
		return 0
	}
	recent := calculator.Mean(vol[n-5:])
	older := calculator.Mean(vol[n-10 : n-5])
	switch {
	case recent > older*1.2:
		return 10
	case recent > older:
		return 5
	}
	return 0
}

func scoreBollinger(snap *model.IndicatorSnapshot) float64 {
	pos := BandPosition(calculator.Last(snap.Close), calculator.Last(snap.BBUpper), calculator.Last(snap.BBLower))
	switch {
	case pos >= 0.3 && pos <= 0.7:
		return 10
	case pos < 0.2:
		return 5
	case pos > 0.8:
		return -10
	}
	return 0
}

// BandPosition returns (price-lower)/(upper-lower), or 0.5 when the band
// has no positive width.
func BandPosition(price, upper, lower float64) float64 {
	if !(upper-lower > 0) {
		return 0.5
	}
	return (price - lower) / (upper - lower)
}

func scoreStochastic(k, d float64) float64 {
	switch {
	case k >= 20 && k <= 80 && d >= 20 && d <= 80:
		return 10
	case k < 20 && d < 20:
		return 5
	case k > 80 && d > 80:
		return -10
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
