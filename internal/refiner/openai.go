package refiner

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIRefiner uses the chat completions API in JSON object mode.
type OpenAIRefiner struct {
	session
	client      *openai.Client
	temperature float32
}

// NewOpenAIRefiner creates an OpenAI-backed refiner. BaseURL targets an
// OpenAI-compatible endpoint.
func NewOpenAIRefiner(cfg Config) (*OpenAIRefiner, error) {
	if err := requireKey(cfg); err != nil {
		return nil, err
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	r := &OpenAIRefiner{
		client:      openai.NewClientWithConfig(oc),
		temperature: float32(cfg.Temperature),
	}
	r.session = newSession(cfg, r.complete)
	return r, nil
}

func (r *OpenAIRefiner) Name() string { return ProviderOpenAI }

func (r *OpenAIRefiner) complete(ctx context.Context, c completion) (reply, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.System},
			{Role: openai.ChatMessageRoleUser, Content: c.User},
		},
		MaxTokens:   c.MaxTokens,
		Temperature: r.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return reply{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return reply{}, fmt.Errorf("openai: empty response")
	}
	return reply{Text: resp.Choices[0].Message.Content, Tokens: int64(resp.Usage.TotalTokens)}, nil
}
