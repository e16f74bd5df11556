package calculator

import (
	"math"

	"StockScreener/internal/model"
)

// SMA returns the simple moving average of values over period, aligned with
// the input. Indices before period-1 are NaN. A NaN inside a window makes that
// window NaN.
func SMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}

// EMA returns the exponential moving average with alpha = 2/(period+1),
// seeded at the first non-NaN input. A NaN input holds the previous value.
func EMA(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period <= 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)

	first := 0
	for first < len(values) && math.IsNaN(values[first]) {
		first++
	}
	if first >= len(values) {
		return out
	}
	out[first] = values[first]
	for i := first + 1; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			out[i] = out[i-1]
			continue
		}
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Mean returns the arithmetic mean of values, or NaN when values is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Last returns the final element of s, or NaN when s is empty.
func Last(s []float64) float64 {
	return At(s, len(s)-1)
}

// At returns s[i], or NaN when i is out of range.
func At(s []float64, i int) float64 {
	if i < 0 || i >= len(s) {
		return math.NaN()
	}
	return s[i]
}

// Closes extracts the close prices of bars.
func Closes(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Highs extracts the high prices of bars.
func Highs(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

// Lows extracts the low prices of bars.
func Lows(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}

// Volumes extracts the traded volumes of bars.
func Volumes(bars []model.OHLCV) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
