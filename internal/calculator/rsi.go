package calculator

// RSI computes the Wilder-smoothed relative strength index series.
// The first defined value sits at index period; earlier entries are NaN.
// When the average loss is zero the value is +100 (or NaN if the average
// gain is zero too); callers treat NaN as undefined.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := nanSeries(n)
	if period <= 0 || n-1 < period {
		return out
	}

	gains := make([]float64, n-1)
	losses := make([]float64, n-1)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i-1] = change
		} else if change < 0 {
			losses[i-1] = -change
		}
	}

	// Initial averages over the first `period` changes
	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < n; i++ {
		avgGain = (avgGain*(p-1) + gains[i-1]) / p
		avgLoss = (avgLoss*(p-1) + losses[i-1]) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
