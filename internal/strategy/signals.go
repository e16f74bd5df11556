package strategy

import (
	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

// Signal thresholds.
const (
	rsiOversold       = 30.0
	rsiRecoveryCeil   = 50.0
	bollingerTouchPct = 1.02
	volumeSurgeRatio  = 1.5
	volumeSurgeWindow = 5
	stochOversold     = 20.0
)

// DetectSignals evaluates every buy condition at the final bar of snap.
// Conditions are independent; any comparison involving NaN is false.
func DetectSignals(snap *model.IndicatorSnapshot) []model.Signal {
	n := snap.Len()
	if n == 0 {
		return nil
	}
	i, p := n-1, n-2
	var out []model.Signal

	if crossedAbove(snap.SMA5, snap.SMA20, i, p) {
		out = append(out, model.SignalGoldenCross)
	}

	rsi := calculator.At(snap.RSI, i)
	if rsi < rsiOversold {
		out = append(out, model.SignalRSIOversold)
	}
	if rsi > rsiOversold && rsi < rsiRecoveryCeil && calculator.At(snap.RSI, p) < rsiOversold {
		out = append(out, model.SignalRSIRecovery)
	}

	if crossedAbove(snap.MACD, snap.MACDSignal, i, p) {
		out = append(out, model.SignalMACDBullishCross)
	}

	if calculator.At(snap.Close, i) <= calculator.At(snap.BBLower, i)*bollingerTouchPct {
		out = append(out, model.SignalBollingerLower)
	}

	// Needs a full window of prior bars; the current bar is excluded.
	if i >= volumeSurgeWindow {
		prior := calculator.Mean(snap.Volume[i-volumeSurgeWindow : i])
		if snap.Volume[i] > prior*volumeSurgeRatio {
			out = append(out, model.SignalVolumeSurge)
		}
	}

	if calculator.At(snap.StochK, i) < stochOversold && calculator.At(snap.StochD, i) < stochOversold {
		out = append(out, model.SignalStochOversold)
	}
	return out
}

// crossedAbove reports fast[i] > slow[i] && fast[p] <= slow[p].
func crossedAbove(fast, slow []float64, i, p int) bool {
	return calculator.At(fast, i) > calculator.At(slow, i) &&
		calculator.At(fast, p) <= calculator.At(slow, p)
}
