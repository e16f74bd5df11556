package refiner

import "StockScreener/internal/model"

const insightReasonLen = 100

// SummarizePortfolio condenses the results that carry an AI opinion.
// Results without one are ignored; an empty summary means there is
// nothing to review.
func SummarizePortfolio(results []*model.AnalysisResult) model.PortfolioSummary {
	s := model.PortfolioSummary{
		Recommendations: map[string]int{"BUY": 0, "SELL": 0, "HOLD": 0},
		Sectors:         map[string]int{},
		KeyInsights:     []model.Insight{},
	}
	var confidence, score float64
	for _, r := range results {
		op := r.Opinion
		if op == nil {
			continue
		}
		s.TotalStocks++
		s.Recommendations[op.Recommendation]++
		confidence += op.Confidence
		score += r.Score()

		sector := r.Sector()
		if sector == "" {
			sector = "Unknown"
		}
		s.Sectors[sector]++

		if op.Reasoning != "" {
			s.KeyInsights = append(s.KeyInsights, model.Insight{
				Symbol:         r.Symbol,
				Recommendation: op.Recommendation,
				Confidence:     op.Confidence,
				Reason:         clip(op.Reasoning, insightReasonLen),
			})
		}
	}
	if s.TotalStocks > 0 {
		s.AverageConfidence = confidence / float64(s.TotalStocks)
		s.AverageScore = score / float64(s.TotalStocks)
	}
	return s
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
