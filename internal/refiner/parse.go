package refiner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockScreener/internal/model"
)

type rawOpinion struct {
	Recommendation    string   `json:"recommendation"`
	Confidence        float64  `json:"confidence"`
	TargetPrice       *float64 `json:"target_price"`
	Reasoning         string   `json:"reasoning"`
	KeyFactors        []string `json:"key_factors"`
	Risks             []string `json:"risks"`
	Opportunities     []string `json:"opportunities"`
	InvestmentHorizon string   `json:"investment_horizon"`
}

// ParseOpinion decodes a model reply into an Opinion. Code fences and text
// around the JSON object are ignored; confidence is clamped to [0,1] and
// unknown recommendations become HOLD.
func ParseOpinion(text, modelName string, tokens int64, at time.Time) (*model.Opinion, error) {
	body := extractJSON(text)
	if body == "" {
		return nil, fmt.Errorf("no json object in model reply")
	}
	var raw rawOpinion
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode opinion: %w", err)
	}

	rec := strings.ToUpper(strings.TrimSpace(raw.Recommendation))
	switch rec {
	case "BUY", "SELL", "HOLD":
	default:
		rec = "HOLD"
	}
	horizon := strings.ToUpper(strings.TrimSpace(raw.InvestmentHorizon))
	switch horizon {
	case "SHORT", "MEDIUM", "LONG":
	default:
		horizon = ""
	}
	conf := raw.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	return &model.Opinion{
		Recommendation:    rec,
		Confidence:        conf,
		TargetPrice:       raw.TargetPrice,
		Reasoning:         strings.TrimSpace(raw.Reasoning),
		KeyFactors:        raw.KeyFactors,
		Risks:             raw.Risks,
		Opportunities:     raw.Opportunities,
		InvestmentHorizon: horizon,
		Model:             modelName,
		TokensUsed:        tokens,
		AnalyzedAt:        at,
	}, nil
}

// Models answer the run-level prompts less strictly than the per-stock one:
// lists come back as strings, prose as nested objects and numbers as
// strings. These fields are decoded loosely.
type rawPortfolio struct {
	Score                json.RawMessage `json:"portfolio_score"`
	RiskLevel            json.RawMessage `json:"risk_level"`
	DiversificationScore json.RawMessage `json:"diversification_score"`
	Recommendations      json.RawMessage `json:"recommendations"`
	SectorAnalysis       json.RawMessage `json:"sector_analysis"`
	MarketOutlook        json.RawMessage `json:"market_outlook"`
	SuggestedActions     json.RawMessage `json:"suggested_actions"`
}

type rawSentiment struct {
	Score         json.RawMessage `json:"sentiment_score"`
	Outlook       json.RawMessage `json:"market_outlook"`
	KeyFactors    json.RawMessage `json:"key_factors"`
	Risks         json.RawMessage `json:"risks"`
	Opportunities json.RawMessage `json:"opportunities"`
	Strategy      json.RawMessage `json:"recommended_strategy"`
}

// ParsePortfolio decodes a portfolio review reply. Scores are clamped to
// [0,100].
func ParsePortfolio(text string) (*model.PortfolioView, error) {
	body := extractJSON(text)
	if body == "" {
		return nil, fmt.Errorf("no json object in model reply")
	}
	var raw rawPortfolio
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode portfolio review: %w", err)
	}
	return &model.PortfolioView{
		Score:                clamp(looseNumber(raw.Score), 0, 100),
		RiskLevel:            strings.ToUpper(looseText(raw.RiskLevel)),
		DiversificationScore: clamp(looseNumber(raw.DiversificationScore), 0, 100),
		Recommendations:      looseList(raw.Recommendations),
		SectorAnalysis:       looseText(raw.SectorAnalysis),
		MarketOutlook:        looseText(raw.MarketOutlook),
		SuggestedActions:     looseList(raw.SuggestedActions),
	}, nil
}

// ParseSentiment decodes a market sentiment reply. The score is clamped to
// [-1,1].
func ParseSentiment(text string) (*model.MarketSentiment, error) {
	body := extractJSON(text)
	if body == "" {
		return nil, fmt.Errorf("no json object in model reply")
	}
	var raw rawSentiment
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode market sentiment: %w", err)
	}
	return &model.MarketSentiment{
		Score:         clamp(looseNumber(raw.Score), -1, 1),
		Outlook:       looseText(raw.Outlook),
		KeyFactors:    looseList(raw.KeyFactors),
		Risks:         looseList(raw.Risks),
		Opportunities: looseList(raw.Opportunities),
		Strategy:      looseText(raw.Strategy),
	}, nil
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func looseNumber(raw json.RawMessage) float64 {
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// looseText flattens a string, list or object into one line of text.
func looseText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s)
	}
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(looseList(raw), "; ")
	}
	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if v := looseText(obj[k]); v != "" {
				parts = append(parts, k+": "+v)
			}
		}
		return strings.Join(parts, "; ")
	}
	return strings.TrimSpace(string(raw))
}

// looseList reads a list of strings; a single string becomes a one-item list.
func looseList(raw json.RawMessage) []string {
	var list []json.RawMessage
	if json.Unmarshal(raw, &list) != nil {
		if t := looseText(raw); t != "" {
			return []string{t}
		}
		return nil
	}
	var out []string
	for _, item := range list {
		if t := looseText(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
