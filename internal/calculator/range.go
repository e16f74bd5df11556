package calculator

import (
	"errors"
	"math"

	"StockScreener/internal/model"
)

// ErrNoBars is returned by range helpers given an empty history.
var ErrNoBars = errors.New("no bars provided")

// TrailingRange scans the most recent `window` bars and returns the highest
// high and lowest low.
func TrailingRange(bars []model.OHLCV, window int) (high, low float64, err error) {
	if len(bars) == 0 {
		return 0, 0, ErrNoBars
	}
	n := len(bars)
	start := n - window
	if start < 0 || window <= 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}
		if bars[i].Low < low {
			low = bars[i].Low
		}
	}
	return high, low, nil
}

// HistoryRange returns the high and low over every bar supplied. It is what
// results report as the 52-week range; the fetched history bounds the window.
func HistoryRange(bars []model.OHLCV) (high, low float64, err error) {
	return TrailingRange(bars, 0)
}

// RangePosition returns where current sits between low and high in percent.
// A flat range yields 50.
func RangePosition(current, high, low float64) float64 {
	if high == low {
		return 50
	}
	return (current - low) / (high - low) * 100
}
