package model

import "time"

// Opinion is the supplementary recommendation returned by the AI refiner.
type Opinion struct {
	Recommendation    string    `json:"recommendation"` // BUY, SELL or HOLD
	Confidence        float64   `json:"confidence"`
	TargetPrice       *float64  `json:"target_price,omitempty"`
	Reasoning         string    `json:"reasoning"`
	KeyFactors        []string  `json:"key_factors,omitempty"`
	Risks             []string  `json:"risks,omitempty"`
	Opportunities     []string  `json:"opportunities,omitempty"`
	InvestmentHorizon string    `json:"investment_horizon,omitempty"` // SHORT, MEDIUM or LONG
	Model             string    `json:"ai_model"`
	TokensUsed        int64     `json:"tokens_used"`
	AnalyzedAt        time.Time `json:"analysis_timestamp"`
}
