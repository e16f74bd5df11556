package calculator

import "math"

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes EMA(fast) - EMA(slow), its EMA(signal) and the difference.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	emaFast := EMA(closes, fast)
	emaSlow := EMA(closes, slow)
	line := make([]float64, len(closes))
	for i := range line {
		line[i] = emaFast[i] - emaSlow[i]
	}
	sig := EMA(line, signal)
	hist := make([]float64, len(closes))
	for i := range hist {
		hist[i] = line[i] - sig[i]
	}
	return MACDResult{Line: line, Signal: sig, Histogram: hist}
}

// BandsResult holds Bollinger band series.
type BandsResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes SMA(period) plus and minus k population standard
// deviations of the same window.
func Bollinger(closes []float64, period int, k float64) BandsResult {
	middle := SMA(closes, period)
	upper := nanSeries(len(closes))
	lower := nanSeries(len(closes))
	if period <= 0 {
		return BandsResult{Upper: upper, Middle: middle, Lower: lower}
	}
	for i := period - 1; i < len(closes); i++ {
		sd := StdDev(closes[i-period+1 : i+1])
		upper[i] = middle[i] + k*sd
		lower[i] = middle[i] - k*sd
	}
	return BandsResult{Upper: upper, Middle: middle, Lower: lower}
}

// StochasticResult holds %K and %D.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic computes %K over kPeriod bars and %D as SMA(dPeriod) of %K.
// A flat high/low range yields %K = 50.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) StochasticResult {
	k := nanSeries(len(closes))
	if kPeriod > 0 {
		for i := kPeriod - 1; i < len(closes); i++ {
			hh := math.Inf(-1)
			ll := math.Inf(1)
			for j := i - kPeriod + 1; j <= i; j++ {
				hh = math.Max(hh, highs[j])
				ll = math.Min(ll, lows[j])
			}
			if hh != ll {
				k[i] = (closes[i] - ll) / (hh - ll) * 100
			} else {
				k[i] = 50
			}
		}
	}
	return StochasticResult{K: k, D: SMA(k, dPeriod)}
}
