package refiner

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeRefiner uses the Anthropic messages API.
type ClaudeRefiner struct {
	session
	client      anthropic.Client
	temperature float64
}

// NewClaudeRefiner creates an Anthropic-backed refiner.
func NewClaudeRefiner(cfg Config) (*ClaudeRefiner, error) {
	if err := requireKey(cfg); err != nil {
		return nil, err
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	r := &ClaudeRefiner{
		client:      anthropic.NewClient(opts...),
		temperature: cfg.Temperature,
	}
	r.session = newSession(cfg, r.complete)
	return r, nil
}

func (r *ClaudeRefiner) Name() string { return ProviderAnthropic }

func (r *ClaudeRefiner) complete(ctx context.Context, c completion) (reply, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(r.model),
		MaxTokens: int64(c.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(c.User)),
		},
		System: []anthropic.TextBlockParam{{Text: c.System}},
	}
	if r.temperature > 0 {
		params.Temperature = anthropic.Float(r.temperature)
	}

	resp, err := r.client.Messages.New(ctx, params)
	if err != nil {
		return reply{}, fmt.Errorf("claude messages: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return reply{}, fmt.Errorf("claude: empty response")
	}
	return reply{Text: text.String(), Tokens: resp.Usage.InputTokens + resp.Usage.OutputTokens}, nil
}
