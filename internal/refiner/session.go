package refiner

import (
	"context"
	"errors"
	"time"

	"StockScreener/internal/model"
)

// ErrNoOpinions is returned by RefinePortfolio when no result carries an
// opinion to review.
var ErrNoOpinions = errors.New("no refined results to review")

const (
	portfolioMaxTokens = 1500
	sentimentMaxTokens = 1000
)

// completion is one system plus user exchange with a provider.
type completion struct {
	System    string
	User      string
	MaxTokens int
}

type reply struct {
	Text   string
	Tokens int64
}

// session implements the Refiner operations on top of a provider's
// completion call. Providers embed it and supply call.
type session struct {
	model     string
	maxTokens int
	now       func() time.Time
	call      func(ctx context.Context, c completion) (reply, error)
}

func newSession(cfg Config, call func(context.Context, completion) (reply, error)) session {
	return session{model: cfg.model(), maxTokens: cfg.maxTokens(), now: time.Now, call: call}
}

func (s *session) Refine(ctx context.Context, result *model.AnalysisResult) (*model.Opinion, error) {
	rep, err := s.call(ctx, completion{System: systemPrompt, User: BuildPrompt(result), MaxTokens: s.maxTokens})
	if err != nil {
		return nil, err
	}
	return ParseOpinion(rep.Text, s.model, rep.Tokens, s.now())
}

func (s *session) RefinePortfolio(ctx context.Context, results []*model.AnalysisResult) (*model.PortfolioView, error) {
	summary := SummarizePortfolio(results)
	if summary.TotalStocks == 0 {
		return nil, ErrNoOpinions
	}
	user, err := BuildPortfolioPrompt(summary)
	if err != nil {
		return nil, err
	}
	rep, err := s.call(ctx, completion{System: portfolioPrompt, User: user, MaxTokens: min(s.maxTokens, portfolioMaxTokens)})
	if err != nil {
		return nil, err
	}
	view, err := ParsePortfolio(rep.Text)
	if err != nil {
		return nil, err
	}
	view.Summary = summary
	view.Model = s.model
	view.TokensUsed = rep.Tokens
	view.AnalyzedAt = s.now()
	return view, nil
}

func (s *session) MarketSentiment(ctx context.Context, indices []model.Quote) (*model.MarketSentiment, error) {
	at := s.now()
	rep, err := s.call(ctx, completion{
		System:    sentimentPrompt,
		User:      BuildSentimentPrompt(indices, at),
		MaxTokens: min(s.maxTokens, sentimentMaxTokens),
	})
	if err != nil {
		return nil, err
	}
	ms, err := ParseSentiment(rep.Text)
	if err != nil {
		return nil, err
	}
	ms.Indices = indices
	ms.Model = s.model
	ms.TokensUsed = rep.Tokens
	ms.AnalyzedAt = at
	return ms, nil
}
