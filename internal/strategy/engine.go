package strategy

import (
	"StockScreener/internal/model"
)

// Evaluation bundles everything derived from one indicator snapshot.
type Evaluation struct {
	Signals        []model.Signal
	Scores         model.ScoreBreakdown
	Risk           model.RiskLevel
	Recommendation model.Recommendation
}

// Recommend maps score, signal count and risk to a recommendation.
// Rules are checked in order; the first match wins.
func Recommend(score float64, signalCount int, risk model.RiskLevel) model.Recommendation {
	switch {
	case score >= 75 && signalCount >= 2 && risk != model.RiskHigh:
		return model.RecStrongBuy
	case score >= 65 && signalCount >= 1:
		return model.RecBuy
	case score >= 55:
		return model.RecHold
	case score < 45:
		return model.RecConsiderSelling
	}
	return model.RecWatch
}

// Evaluate runs signal detection, scoring, risk classification and the
// recommender over snap.
func Evaluate(snap *model.IndicatorSnapshot) *Evaluation {
	signals := DetectSignals(snap)
	scores := Score(snap, signals)
	risk := ClassifyRisk(snap)
	return &Evaluation{
		Signals:        signals,
		Scores:         scores,
		Risk:           risk,
		Recommendation: Recommend(scores.Overall, len(signals), risk),
	}
}
