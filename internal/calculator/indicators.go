package calculator

import "StockScreener/internal/model"

// Indicator windows used by the standard set.
const (
	ShortMA      = 5
	MidMA        = 20
	LongMA       = 60
	RSIPeriod    = 14
	MACDFast     = 12
	MACDSlow     = 26
	MACDSignal   = 9
	BollingerN   = 20
	BollingerK   = 2.0
	StochKPeriod = 14
	StochDPeriod = 3
)

// IndicatorSet computes derived indicator series from a price history.
// Every returned series has the same length as bars.
type IndicatorSet interface {
	Compute(bars []model.OHLCV) *model.IndicatorSnapshot
}

// Standard is the pure-Go IndicatorSet.
type Standard struct{}

// NewStandard returns the default IndicatorSet.
func NewStandard() Standard {
	return Standard{}
}

func (Standard) Compute(bars []model.OHLCV) *model.IndicatorSnapshot {
	closes := Closes(bars)
	highs := Highs(bars)
	lows := Lows(bars)

	macd := MACD(closes, MACDFast, MACDSlow, MACDSignal)
	bands := Bollinger(closes, BollingerN, BollingerK)
	stoch := Stochastic(highs, lows, closes, StochKPeriod, StochDPeriod)

	return &model.IndicatorSnapshot{
		SMA5:       SMA(closes, ShortMA),
		SMA20:      SMA(closes, MidMA),
		SMA60:      SMA(closes, LongMA),
		RSI:        RSI(closes, RSIPeriod),
		MACD:       macd.Line,
		MACDSignal: macd.Signal,
		MACDHist:   macd.Histogram,
		BBUpper:    bands.Upper,
		BBMiddle:   bands.Middle,
		BBLower:    bands.Lower,
		StochK:     stoch.K,
		StochD:     stoch.D,
		Close:      closes,
		Volume:     Volumes(bars),
	}
}
