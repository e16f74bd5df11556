package model

import "time"

// PortfolioSummary condenses the AI opinions of one run. It is what the
// portfolio review is asked about.
type PortfolioSummary struct {
	TotalStocks       int            `json:"total_stocks"`
	Recommendations   map[string]int `json:"recommendations"`
	Sectors           map[string]int `json:"sectors"`
	AverageConfidence float64        `json:"average_confidence"`
	AverageScore      float64        `json:"average_technical_score"`
	KeyInsights       []Insight      `json:"key_insights"`
}

// Insight is the one-line take on a single stock inside a PortfolioSummary.
type Insight struct {
	Symbol         string  `json:"stock_code"`
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"key_reason"`
}

// PortfolioView is the AI review of all refined stocks of a run taken
// together.
type PortfolioView struct {
	Score                float64          `json:"portfolio_score"`
	RiskLevel            string           `json:"risk_level"`
	DiversificationScore float64          `json:"diversification_score"`
	Recommendations      []string         `json:"recommendations,omitempty"`
	SectorAnalysis       string           `json:"sector_analysis,omitempty"`
	MarketOutlook        string           `json:"market_outlook,omitempty"`
	SuggestedActions     []string         `json:"suggested_actions,omitempty"`
	Summary              PortfolioSummary `json:"summary"`
	Model                string           `json:"ai_model"`
	TokensUsed           int64            `json:"tokens_used"`
	AnalyzedAt           time.Time        `json:"analysis_timestamp"`
}

// MarketSentiment is the AI read of the overall market. Score runs from
// -1 (bearish) to 1 (bullish).
type MarketSentiment struct {
	Score         float64   `json:"sentiment_score"`
	Outlook       string    `json:"market_outlook"`
	KeyFactors    []string  `json:"key_factors,omitempty"`
	Risks         []string  `json:"risks,omitempty"`
	Opportunities []string  `json:"opportunities,omitempty"`
	Strategy      string    `json:"recommended_strategy,omitempty"`
	Indices       []Quote   `json:"indices,omitempty"`
	Model         string    `json:"ai_model"`
	TokensUsed    int64     `json:"tokens_used"`
	AnalyzedAt    time.Time `json:"analysis_timestamp"`
}
