package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"StockScreener/internal/model"
)

var recommendationEmoji = map[model.Recommendation]string{
	model.RecStrongBuy:       "🚀",
	model.RecBuy:             "🟢",
	model.RecHold:            "🟡",
	model.RecWatch:           "👀",
	model.RecConsiderSelling: "🔴",
}

var riskEmoji = map[model.RiskLevel]string{
	model.RiskLow:      "🟢",
	model.RiskModerate: "🟡",
	model.RiskHigh:     "🔴",
}

func price(v float64) string {
	if v >= 1000 {
		return humanize.Comma(int64(math.Round(v)))
	}
	return humanize.CommafWithDigits(v, 2)
}

// FormatRunReport renders a full screening run, best score first.
func FormatRunReport(r *model.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 <b>Stock screening</b> | %s\n", r.StartedAt.Format("2006-01-02 15:04"))
	if r.Condition != "" {
		fmt.Fprintf(&b, "Condition: %s\n", html.EscapeString(r.Condition))
	}
	fmt.Fprintf(&b, "Stocks: %d | took %s\n\n", len(r.Results), r.Duration().Round(time.Second))

	for i, res := range r.Results {
		fmt.Fprintf(&b, "%d. %s\n", i+1, FormatResult(res))
	}
	b.WriteString(FormatSummary(r.Summary))
	if r.Portfolio != nil {
		b.WriteString("\n" + FormatPortfolio(r.Portfolio))
	}
	if r.MarketView != nil {
		b.WriteString("\n" + FormatMarketSentiment(r.MarketView))
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n⚠️ <b>%d symbols failed</b>\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  %s (%s): %s\n", e.Symbol, e.Stage, html.EscapeString(e.Error))
		}
	}
	return b.String()
}

// FormatResult renders one analysis. Every derived field may be absent.
func FormatResult(r *model.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s</b> (%s)\n", recommendationEmoji[r.Recommendation], html.EscapeString(r.DisplayName()), r.Symbol)

	if !r.Computed() {
		b.WriteString("   insufficient data\n\n")
		return b.String()
	}

	if m := r.Market; m != nil {
		fmt.Fprintf(&b, "   Price: %s | Vol: %s (20d avg %s)\n",
			price(m.CurrentPrice), humanize.Comma(int64(m.Volume)), humanize.Comma(int64(m.AvgVolume20d)))
		if f := m.Fundamentals; f != nil && (f.PER != 0 || f.PBR != 0 || f.Sector != "") {
			fmt.Fprintf(&b, "   PER %.1f | PBR %.2f", f.PER, f.PBR)
			if f.Sector != "" {
				fmt.Fprintf(&b, " | %s", html.EscapeString(f.Sector))
			}
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(&b, "   Score: <b>%.1f</b> | %s | Risk: %s %s\n",
		r.Score(), r.Recommendation, riskEmoji[r.Risk], r.Risk)

	if len(r.Signals) > 0 {
		names := make([]string, len(r.Signals))
		for i, s := range r.Signals {
			names[i] = string(s)
		}
		fmt.Fprintf(&b, "   Signals: %s\n", strings.Join(names, ", "))
	}

	s := r.Scores
	fmt.Fprintf(&b, "   <code>sig %+.0f trend %+.0f rsi %+.0f macd %+.0f vol %+.0f bb %+.0f stoch %+.0f</code>\n",
		s.BuySignals, s.Trend, s.RSI, s.MACD, s.Volume, s.Bollinger, s.Stochastic)

	if n := r.Narrative; n != nil {
		fmt.Fprintf(&b, "   Trend: %s | MA: %s | Volatility: %s\n", n.PriceTrend, n.MAPosition, n.Volatility)
		if n.Momentum != "" {
			fmt.Fprintf(&b, "   %s\n", n.Momentum)
		}
		if sr := n.SupportResistance; sr != nil {
			fmt.Fprintf(&b, "   Support %s / Resistance %s (%.0f%%)\n", price(sr.Support), price(sr.Resistance), sr.CurrentPosition)
		}
	}

	if op := r.Opinion; op != nil {
		fmt.Fprintf(&b, "   🤖 AI: <b>%s</b> %s", op.Recommendation, confidenceBar(op.Confidence))
		if op.TargetPrice != nil {
			fmt.Fprintf(&b, " | target %s", price(*op.TargetPrice))
		}
		if op.InvestmentHorizon != "" {
			fmt.Fprintf(&b, " | %s", op.InvestmentHorizon)
		}
		b.WriteString("\n")
		if op.Reasoning != "" {
			fmt.Fprintf(&b, "   <i>%s</i>\n", html.EscapeString(truncate(op.Reasoning, 200)))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// FormatSummary renders the aggregate block of a run.
func FormatSummary(s model.RunSummary) string {
	var b strings.Builder
	b.WriteString("📊 <b>Summary</b>\n")
	if s.TotalStocks == 0 {
		fmt.Fprintf(&b, "%s\n", s.Text)
		return b.String()
	}
	fmt.Fprintf(&b, "%s\n", s.Text)
	fmt.Fprintf(&b, "🚀 %d | 🟢 %d | 🟡 %d | 👀 %d | 🔴 %d\n",
		s.Recommendations[model.RecStrongBuy], s.Recommendations[model.RecBuy],
		s.Recommendations[model.RecHold], s.Recommendations[model.RecWatch],
		s.Recommendations[model.RecConsiderSelling])
	fmt.Fprintf(&b, "Risk: low %d | moderate %d | high %d\n",
		s.RiskDistribution[model.RiskLow], s.RiskDistribution[model.RiskModerate], s.RiskDistribution[model.RiskHigh])
	if len(s.TopSignals) > 0 {
		parts := make([]string, len(s.TopSignals))
		for i, sc := range s.TopSignals {
			parts[i] = fmt.Sprintf("%s ×%d", sc.Signal, sc.Count)
		}
		fmt.Fprintf(&b, "Top signals: %s\n", strings.Join(parts, ", "))
	}
	return b.String()
}

// FormatPortfolio renders the AI review of a run's refined stocks.
func FormatPortfolio(v *model.PortfolioView) string {
	var b strings.Builder
	b.WriteString("💼 <b>Portfolio review</b>\n")
	fmt.Fprintf(&b, "Score: <b>%.0f</b> | Diversification: %.0f | Risk: %s\n",
		v.Score, v.DiversificationScore, html.EscapeString(v.RiskLevel))
	s := v.Summary
	fmt.Fprintf(&b, "AI calls: BUY %d | HOLD %d | SELL %d (avg confidence %.0f%%)\n",
		s.Recommendations["BUY"], s.Recommendations["HOLD"], s.Recommendations["SELL"], s.AverageConfidence*100)
	if v.SectorAnalysis != "" {
		fmt.Fprintf(&b, "Sectors: %s\n", html.EscapeString(truncate(v.SectorAnalysis, 300)))
	}
	if v.MarketOutlook != "" {
		fmt.Fprintf(&b, "Outlook: %s\n", html.EscapeString(truncate(v.MarketOutlook, 300)))
	}
	writeList(&b, "Actions", v.SuggestedActions, 5)
	return b.String()
}

// FormatMarketSentiment renders the AI market read.
func FormatMarketSentiment(m *model.MarketSentiment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Market sentiment</b> %+.2f\n", sentimentEmoji(m.Score), m.Score)
	for _, q := range m.Indices {
		fmt.Fprintf(&b, "   %s %s (%+.2f%%)\n", html.EscapeString(q.Symbol), price(q.Price), q.ChangeRate)
	}
	if m.Outlook != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(truncate(m.Outlook, 300)))
	}
	writeList(&b, "Factors", m.KeyFactors, 5)
	writeList(&b, "Risks", m.Risks, 5)
	if m.Strategy != "" {
		fmt.Fprintf(&b, "Strategy: <i>%s</i>\n", html.EscapeString(truncate(m.Strategy, 200)))
	}
	return b.String()
}

// SystemStatus is a lifecycle update of the daemon.
type SystemStatus struct {
	Healthy bool
	Status  string
	Message string
	At      time.Time
}

// FormatSystemStatus renders a daemon lifecycle update.
func FormatSystemStatus(s SystemStatus) string {
	emoji := "🟢"
	if !s.Healthy {
		emoji = "🔴"
	}
	out := fmt.Sprintf("%s <b>System status</b>: %s | %s", emoji, html.EscapeString(s.Status), s.At.Format("2006-01-02 15:04:05"))
	if s.Message != "" {
		out += "\n" + html.EscapeString(s.Message)
	}
	return out
}

func sentimentEmoji(score float64) string {
	switch {
	case score >= 0.3:
		return "📈"
	case score <= -0.3:
		return "📉"
	}
	return "➖"
}

func writeList(b *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	if len(items) > limit {
		items = items[:limit]
	}
	fmt.Fprintf(b, "%s:\n", label)
	for _, it := range items {
		fmt.Fprintf(b, "  • %s\n", html.EscapeString(truncate(it, 150)))
	}
}

// FormatNoStocks is sent when the condition search returns nothing.
func FormatNoStocks(condition string, at time.Time) string {
	return fmt.Sprintf("⚠️ <b>No stocks matched</b> condition %q at %s", html.EscapeString(condition), at.Format("2006-01-02 15:04"))
}

// FormatError renders an error alert.
func FormatError(context string, err error) string {
	return fmt.Sprintf("❌ <b>Screening error</b>\nContext: %s\n<code>%s</code>", html.EscapeString(context), html.EscapeString(err.Error()))
}

// FormatLatest renders stored results for the /latest command.
func FormatLatest(results []*model.AnalysisResult) string {
	if len(results) == 0 {
		return "No recorded results yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🗂 <b>Latest results</b> (%s)\n\n", humanize.Time(results[0].AnalyzedAt))
	for _, r := range results {
		fmt.Fprintf(&b, "%s %s (%s) %.1f %s\n", recommendationEmoji[r.Recommendation],
			html.EscapeString(r.DisplayName()), r.Symbol, r.Score(), r.Recommendation)
	}
	return b.String()
}

// FormatHelp lists the chat commands.
func FormatHelp() string {
	return "<b>Commands</b>\n/screen - run a screening now\n/latest - show the latest recorded results\n/help - show this help"
}

func confidenceBar(c float64) string {
	n := int(c * 10)
	if n < 0 {
		n = 0
	}
	if n > 10 {
		n = 10
	}
	return fmt.Sprintf("<code>%s%s</code> %.0f%%", strings.Repeat("█", n), strings.Repeat("░", 10-n), c*100)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
