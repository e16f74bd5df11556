package analyzer

import (
	"fmt"
	"math"
	"sort"

	"StockScreener/internal/model"
)

// Market sentiment labels.
const (
	SentimentBullish = "bullish"
	SentimentNeutral = "neutral"
	SentimentBearish = "bearish"
)

// Summarize aggregates the results of one run.
func Summarize(results []*model.AnalysisResult) model.RunSummary {
	if len(results) == 0 {
		return model.RunSummary{Text: "no stocks to analyze"}
	}

	recs := map[model.Recommendation]int{}
	risks := map[model.RiskLevel]int{
		model.RiskLow:      0,
		model.RiskModerate: 0,
		model.RiskHigh:     0,
	}
	signalCounts := map[model.Signal]int{}
	total := 0.0
	for _, r := range results {
		recs[r.Recommendation]++
		risks[r.Risk]++
		for _, s := range r.Signals {
			signalCounts[s]++
		}
		total += r.Score()
	}

	top := make([]model.SignalCount, 0, len(signalCounts))
	for s, c := range signalCounts {
		top = append(top, model.SignalCount{Signal: s, Count: c})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Signal < top[j].Signal
	})
	if len(top) > 3 {
		top = top[:3]
	}

	n := len(results)
	avg := math.Round(total/float64(n)*10) / 10
	positive := float64(recs[model.RecStrongBuy] + recs[model.RecBuy])

	sentiment := SentimentBearish
	switch {
	case positive >= float64(n)*0.6:
		sentiment = SentimentBullish
	case positive >= float64(n)*0.3:
		sentiment = SentimentNeutral
	}

	return model.RunSummary{
		TotalStocks:      n,
		AverageScore:     avg,
		Sentiment:        sentiment,
		Recommendations:  recs,
		RiskDistribution: risks,
		TopSignals:       top,
		Text:             fmt.Sprintf("%d stocks analyzed. Average technical score %.1f, market sentiment: %s", n, avg, sentiment),
	}
}
