package strategy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/calculator"
	"StockScreener/internal/model"
)

func barsFromCloses(closes []float64, volume float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Open: c, High: c, Low: c, Close: c, Volume: volume}
	}
	return bars
}

func snapshot(bars []model.OHLCV) *model.IndicatorSnapshot {
	return calculator.NewStandard().Compute(bars)
}

func TestRecommend_PriorityOrder(t *testing.T) {
	tests := []struct {
		name    string
		score   float64
		signals int
		risk    model.RiskLevel
		want    model.Recommendation
	}{
		{"strong buy", 80, 3, model.RiskModerate, model.RecStrongBuy},
		{"high risk drops to buy", 80, 3, model.RiskHigh, model.RecBuy},
		{"single signal is buy", 75, 1, model.RiskLow, model.RecBuy},
		{"no signals is hold", 80, 0, model.RiskLow, model.RecHold},
		{"hold boundary", 55, 0, model.RiskLow, model.RecHold},
		{"watch band", 50, 0, model.RiskLow, model.RecWatch},
		{"watch lower boundary", 45, 0, model.RiskLow, model.RecWatch},
		{"consider selling", 44.9, 5, model.RiskLow, model.RecConsiderSelling},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.score, tt.signals, tt.risk))
		})
	}
}

func TestEvaluate_GoldenCross(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[29] = 160

	ev := Evaluate(snapshot(barsFromCloses(closes, 1000)))
	// the jump also lifts MACD over its signal line
	assert.Equal(t, []model.Signal{model.SignalGoldenCross, model.SignalMACDBullishCross}, ev.Signals)
	assert.GreaterOrEqual(t, ev.Scores.Trend, 15.0)
}

func TestDetectSignals_NoCrossWithoutPriorLongAverage(t *testing.T) {
	// 20 bars: SMA20 is undefined at the previous bar, so no cross can fire.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	closes[18] = 150
	closes[19] = 160

	signals := DetectSignals(snapshot(barsFromCloses(closes, 1000)))
	assert.NotContains(t, signals, model.SignalGoldenCross)
}

func TestDetectSignals_VolumeSurgeOnly(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := barsFromCloses(closes, 1000)
	bars[len(bars)-1].Volume = 10000

	signals := DetectSignals(snapshot(bars))
	assert.Equal(t, []model.Signal{model.SignalVolumeSurge}, signals)
}

func TestDetectSignals_VolumeSurgeExcludesCurrentBar(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	bars := barsFromCloses(closes, 1000)
	// 1.6x the prior mean, below 1.5x of a mean that includes the bar itself
	bars[len(bars)-1].Volume = 1600

	assert.Contains(t, DetectSignals(snapshot(bars)), model.SignalVolumeSurge)
}

func TestDetectSignals_Unique(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 200 - float64(i)*2
	}
	signals := DetectSignals(snapshot(barsFromCloses(closes, 1000)))
	seen := map[model.Signal]bool{}
	for _, s := range signals {
		assert.False(t, seen[s], "duplicate signal %s", s)
		seen[s] = true
	}
	assert.Contains(t, signals, model.SignalRSIOversold)
	assert.Contains(t, signals, model.SignalStochOversold)
}

func TestDetectSignals_EmptySnapshot(t *testing.T) {
	assert.Empty(t, DetectSignals(&model.IndicatorSnapshot{}))
}

func TestEvaluate_MonotonicRiseKeepsBounds(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	snap := snapshot(barsFromCloses(closes, 1000))
	ev := Evaluate(snap)

	assert.Equal(t, 100.0, calculator.Last(snap.RSI))
	assert.Equal(t, -15.0, ev.Scores.RSI)
	assert.GreaterOrEqual(t, RiskScore(snap), 30)
	assert.GreaterOrEqual(t, ev.Scores.Overall, 0.0)
	assert.LessOrEqual(t, ev.Scores.Overall, 100.0)
}

func TestEvaluate_FlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	ev := Evaluate(snapshot(barsFromCloses(closes, 1000)))

	assert.Equal(t, 10.0, ev.Scores.Bollinger, "zero-width band is treated as mid position")
	assert.False(t, math.IsNaN(ev.Scores.Overall))
	assert.Equal(t, 0.0, ev.Scores.RSI, "undefined RSI contributes nothing")
	assert.Equal(t, 0.0, ev.Scores.Trend)
}

func TestEvaluate_AllZeroSeriesStaysInBounds(t *testing.T) {
	ev := Evaluate(snapshot(barsFromCloses(make([]float64, 25), 0)))
	assert.GreaterOrEqual(t, ev.Scores.Overall, 0.0)
	assert.LessOrEqual(t, ev.Scores.Overall, 100.0)
	assert.Equal(t, model.RiskLow, ev.Risk)
}

func TestScore_Clamped(t *testing.T) {
	snap := &model.IndicatorSnapshot{
		SMA5: []float64{1, 3}, SMA20: []float64{2, 2}, SMA60: []float64{1, 1},
		RSI:  []float64{45, 50},
		MACD: []float64{0, 2}, MACDSignal: []float64{1, 1},
		BBUpper: []float64{12, 12}, BBLower: []float64{8, 8}, Close: []float64{10, 10},
		StochK: []float64{50, 50}, StochD: []float64{50, 50},
		Volume: []float64{1, 1},
	}
	signals := []model.Signal{model.SignalGoldenCross, model.SignalMACDBullishCross, model.SignalVolumeSurge, model.SignalRSIRecovery}
	b := Score(snap, signals)
	assert.Equal(t, 30.0, b.BuySignals)
	assert.Equal(t, 20.0, b.Trend)
	assert.Equal(t, 12.0, b.MACD)
	assert.Greater(t, b.Sum(), 100.0)
	assert.Equal(t, 100.0, b.Overall)
}

func TestScoreRSI_Bands(t *testing.T) {
	cases := map[float64]float64{
		40: 15, 60: 15, 30: 10, 39.9: 10, 65: 5, 70: 5, 29.9: -5, 70.1: -15,
	}
	for rsi, want := range cases {
		assert.Equal(t, want, scoreRSI(rsi), "rsi=%v", rsi)
	}
	assert.Equal(t, 0.0, scoreRSI(math.NaN()))
}

func TestScoreVolume(t *testing.T) {
	base := []float64{100, 100, 100, 100, 100}
	assert.Equal(t, 10.0, scoreVolume(append(append([]float64{}, base...), 130, 130, 130, 130, 130)))
	assert.Equal(t, 5.0, scoreVolume(append(append([]float64{}, base...), 110, 110, 110, 110, 110)))
	assert.Equal(t, 0.0, scoreVolume(append(append([]float64{}, base...), 90, 90, 90, 90, 90)))
	assert.Equal(t, 0.0, scoreVolume([]float64{1, 2, 3}))
}

func TestScoreStochastic(t *testing.T) {
	assert.Equal(t, 10.0, scoreStochastic(50, 50))
	assert.Equal(t, 5.0, scoreStochastic(10, 15))
	assert.Equal(t, -10.0, scoreStochastic(90, 85))
	assert.Equal(t, 0.0, scoreStochastic(10, 50))
}

func TestBandPosition(t *testing.T) {
	assert.Equal(t, 0.5, BandPosition(10, 10, 10))
	assert.Equal(t, 0.5, BandPosition(10, math.NaN(), math.NaN()))
	assert.InDelta(t, 0.25, BandPosition(9, 12, 8), 1e-9)
}

func TestRiskLabel(t *testing.T) {
	assert.Equal(t, model.RiskLow, riskLabel(29))
	assert.Equal(t, model.RiskModerate, riskLabel(30))
	assert.Equal(t, model.RiskModerate, riskLabel(59))
	assert.Equal(t, model.RiskHigh, riskLabel(60))
}

func TestVolatility(t *testing.T) {
	_, ok := Volatility(make([]float64, 19))
	assert.False(t, ok)
	_, ok = Volatility(make([]float64, 20))
	assert.False(t, ok, "zero mean is undefined")

	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	v, ok := Volatility(closes)
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}
