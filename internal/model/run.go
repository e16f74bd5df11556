package model

import "time"

// Trigger indicates what started a screening run.
type Trigger string

const (
	TriggerScheduled Trigger = "SCHEDULED"
	TriggerManual    Trigger = "MANUAL"
	TriggerCommand   Trigger = "COMMAND"
	TriggerAPI       Trigger = "API"
)

// RunSummary aggregates all analyses of one run.
type RunSummary struct {
	TotalStocks      int                    `json:"total_stocks"`
	AverageScore     float64                `json:"average_score"`
	Sentiment        string                 `json:"market_sentiment"`
	Recommendations  map[Recommendation]int `json:"recommendations"`
	RiskDistribution map[RiskLevel]int      `json:"risk_distribution"`
	TopSignals       []SignalCount          `json:"top_signals"`
	Text             string                 `json:"summary"`
}

// SignalCount is one entry of the top-signal ranking.
type SignalCount struct {
	Signal Signal `json:"signal"`
	Count  int    `json:"count"`
}

// SymbolError records a collaborator failure for one symbol.
type SymbolError struct {
	Symbol string `json:"symbol"`
	Stage  string `json:"stage"`
	Error  string `json:"error"`
}

// RunReport is the outcome of one screening run.
type RunReport struct {
	ID         string            `json:"id"`
	Trigger    Trigger           `json:"trigger"`
	Condition  string            `json:"condition_name"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Results    []*AnalysisResult `json:"results"`
	Summary    RunSummary        `json:"summary"`
	Portfolio  *PortfolioView    `json:"portfolio_analysis,omitempty"`
	MarketView *MarketSentiment  `json:"ai_market_sentiment,omitempty"`
	Errors     []SymbolError     `json:"errors,omitempty"`
}

// Duration returns how long the run took.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
