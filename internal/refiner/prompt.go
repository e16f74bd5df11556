package refiner

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"StockScreener/internal/model"
)

const systemPrompt = `You are a professional Korean stock market analyst with expertise in technical analysis.
Analyze the stock described by the user and give a BUY, SELL or HOLD recommendation with reasoning.

Guidelines:
1. Base the opinion on the technical score, detected buy signals and indicator state provided
2. Highlight key risks and opportunities
3. Provide a target price only if you can justify it
4. Use Korean stock market context (KOSPI/KOSDAQ)

Respond with a single JSON object with these fields:
{
  "recommendation": "BUY|SELL|HOLD",
  "confidence": 0.0-1.0,
  "target_price": number or null,
  "reasoning": "detailed explanation",
  "key_factors": ["factor1", ...],
  "risks": ["risk1", ...],
  "opportunities": ["opp1", ...],
  "investment_horizon": "SHORT|MEDIUM|LONG"
}`

// BuildPrompt renders the user prompt for one analysis result.
func BuildPrompt(r *model.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stock analysis request\n\n")
	fmt.Fprintf(&b, "Code: %s\nName: %s\n", r.Symbol, r.DisplayName())

	if m := r.Market; m != nil {
		fmt.Fprintf(&b, "Current price: %.0f\nVolume: %.0f\n52-period high/low: %.0f / %.0f\n20-day average volume: %.0f\n",
			m.CurrentPrice, m.Volume, m.High52w, m.Low52w, m.AvgVolume20d)
		if f := m.Fundamentals; f != nil {
			fmt.Fprintf(&b, "\nMarket cap: %s\nPER: %s\nPBR: %s\nDividend yield: %s\nDaily change: %+.2f%%\nSector: %s\nMarket: %s\n",
				orNA(f.MarketCap, "%.0f"), orNA(f.PER, "%.2f"), orNA(f.PBR, "%.2f"), orNA(f.DividendYield, "%.2f%%"),
				f.ChangeRate, textOrNA(f.Sector), textOrNA(f.Market))
		}
	}

	s := r.Scores
	fmt.Fprintf(&b, "\nTechnical score: %.1f / 100 (recommendation: %s, risk: %s)\n", s.Overall, r.Recommendation, r.Risk)
	fmt.Fprintf(&b, "Sub-scores: signals %+.0f, trend %+.0f, RSI %+.0f, MACD %+.0f, volume %+.0f, Bollinger %+.0f, stochastic %+.0f\n",
		s.BuySignals, s.Trend, s.RSI, s.MACD, s.Volume, s.Bollinger, s.Stochastic)

	if len(r.Signals) > 0 {
		names := make([]string, len(r.Signals))
		for i, sig := range r.Signals {
			names[i] = string(sig)
		}
		fmt.Fprintf(&b, "Buy signals: %s\n", strings.Join(names, ", "))
	} else {
		fmt.Fprintf(&b, "Buy signals: none\n")
	}

	if iv := r.Indicators; iv != nil {
		fmt.Fprintf(&b, "RSI: %s, MACD: %s / signal %s, SMA5: %s, SMA20: %s, Stochastic %%K/%%D: %s / %s\n",
			reading(iv.RSI), reading(iv.MACD), reading(iv.MACDSignal), reading(iv.SMA5), reading(iv.SMA20),
			reading(iv.StochK), reading(iv.StochD))
	}

	if n := r.Narrative; n != nil {
		fmt.Fprintf(&b, "\nPrice trend: %s\nVolume trend: %s\nMoving averages: %s\nVolatility: %s\nRSI status: %s\nMACD: %s\nBollinger: %s\nMomentum: %s\n",
			n.PriceTrend, n.VolumeTrend, n.MAPosition, n.Volatility, n.RSIStatus, n.MACDStatus, n.BollingerPosition, n.Momentum)
		if sr := n.SupportResistance; sr != nil {
			fmt.Fprintf(&b, "Support %.0f, resistance %.0f, position %.0f%%\n", sr.Support, sr.Resistance, sr.CurrentPosition)
		}
	}

	b.WriteString("\nGive an overall investment opinion with a BUY/SELL/HOLD recommendation.")
	return b.String()
}

const portfolioPrompt = `You are a portfolio manager specializing in Korean stocks.
Review the screened stocks described by the user as one portfolio.

Respond with a single JSON object with these fields:
{
  "portfolio_score": 0-100,
  "risk_level": "LOW|MODERATE|HIGH",
  "diversification_score": 0-100,
  "recommendations": ["..."],
  "sector_analysis": "sector concentration and balance",
  "market_outlook": "how the current market affects this portfolio",
  "suggested_actions": ["..."]
}`

const sentimentPrompt = `You are a Korean stock market expert.
Assess the overall sentiment and outlook of the KOSPI/KOSDAQ market.

Respond with a single JSON object with these fields:
{
  "sentiment_score": -1.0 to 1.0,
  "market_outlook": "short outlook",
  "key_factors": ["..."],
  "risks": ["..."],
  "opportunities": ["..."],
  "recommended_strategy": "..."
}`

// BuildPortfolioPrompt renders the portfolio review request for summary.
func BuildPortfolioPrompt(summary model.PortfolioSummary) (string, error) {
	body, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode portfolio summary: %w", err)
	}
	var b strings.Builder
	b.WriteString("Portfolio review request\n\nPer-stock AI results:\n")
	b.Write(body)
	b.WriteString("\n\nCover:\n1. Overall assessment of the portfolio\n2. Sector diversification\n" +
		"3. Risk and return balance\n4. Suggested adjustments\n5. Strategy for the current market\n")
	return b.String(), nil
}

// BuildSentimentPrompt renders the market sentiment request. indices may be
// empty.
func BuildSentimentPrompt(indices []model.Quote, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current time: %s\n\nIndex quotes:\n", at.Format("2006-01-02 15:04"))
	if len(indices) == 0 {
		b.WriteString("unavailable\n")
	}
	for _, q := range indices {
		fmt.Fprintf(&b, "- %s: %.2f (%+.2f%%)\n", q.Symbol, q.Price, q.ChangeRate)
	}
	b.WriteString("\nConsider domestic and global economic conditions, major issues and policy, " +
		"global market trends and the sector outlook.\n")
	return b.String()
}

func orNA(v float64, format string) string {
	if v == 0 {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}

func textOrNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}

func reading(r model.Reading) string {
	if !r.Valid() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", float64(r))
}
