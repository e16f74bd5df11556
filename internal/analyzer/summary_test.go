package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StockScreener/internal/model"
)

func result(score float64, rec model.Recommendation, risk model.RiskLevel, signals ...model.Signal) *model.AnalysisResult {
	return &model.AnalysisResult{
		Status:         model.StatusComputed,
		Scores:         model.ScoreBreakdown{Overall: score},
		Recommendation: rec,
		Risk:           risk,
		Signals:        signals,
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.TotalStocks)
	assert.Equal(t, "no stocks to analyze", s.Text)
}

func TestSummarize_Bullish(t *testing.T) {
	s := Summarize([]*model.AnalysisResult{
		result(80, model.RecStrongBuy, model.RiskLow, model.SignalGoldenCross, model.SignalVolumeSurge),
		result(70, model.RecBuy, model.RiskModerate, model.SignalVolumeSurge),
		result(50, model.RecWatch, model.RiskHigh),
	})
	assert.Equal(t, 3, s.TotalStocks)
	assert.Equal(t, 66.7, s.AverageScore)
	assert.Equal(t, SentimentBullish, s.Sentiment)
	assert.Equal(t, 1, s.Recommendations[model.RecStrongBuy])
	assert.Equal(t, 1, s.RiskDistribution[model.RiskHigh])
	assert.Equal(t, []model.SignalCount{
		{Signal: model.SignalVolumeSurge, Count: 2},
		{Signal: model.SignalGoldenCross, Count: 1},
	}, s.TopSignals)
	assert.Contains(t, s.Text, "3 stocks analyzed")
}

func TestSummarize_SentimentThresholds(t *testing.T) {
	neutral := Summarize([]*model.AnalysisResult{
		result(70, model.RecBuy, model.RiskLow),
		result(50, model.RecWatch, model.RiskLow),
		result(50, model.RecWatch, model.RiskLow),
	})
	assert.Equal(t, SentimentNeutral, neutral.Sentiment)

	bearish := Summarize([]*model.AnalysisResult{
		result(40, model.RecConsiderSelling, model.RiskLow),
		result(50, model.RecWatch, model.RiskLow),
		result(60, model.RecHold, model.RiskLow),
		result(70, model.RecBuy, model.RiskLow),
	})
	assert.Equal(t, SentimentBearish, bearish.Sentiment)
}

func TestSummarize_TopSignalsTieBreakByName(t *testing.T) {
	s := Summarize([]*model.AnalysisResult{
		result(50, model.RecWatch, model.RiskLow,
			model.SignalVolumeSurge, model.SignalRSIOversold, model.SignalGoldenCross, model.SignalBollingerLower),
	})
	assert.Len(t, s.TopSignals, 3)
	assert.Equal(t, model.SignalBollingerLower, s.TopSignals[0].Signal)
	assert.Equal(t, model.SignalRSIOversold, s.TopSignals[1].Signal)
	assert.Equal(t, model.SignalGoldenCross, s.TopSignals[2].Signal)
}
