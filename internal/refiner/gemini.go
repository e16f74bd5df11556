package refiner

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiRefiner uses the Gemini API with a JSON response MIME type.
type GeminiRefiner struct {
	session
	client      *genai.Client
	temperature float32
}

// NewGeminiRefiner creates a Gemini-backed refiner.
func NewGeminiRefiner(ctx context.Context, cfg Config) (*GeminiRefiner, error) {
	if err := requireKey(cfg); err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	r := &GeminiRefiner{client: client, temperature: float32(cfg.Temperature)}
	r.session = newSession(cfg, r.complete)
	return r, nil
}

func (r *GeminiRefiner) Name() string { return ProviderGemini }

func (r *GeminiRefiner) complete(ctx context.Context, c completion) (reply, error) {
	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(r.temperature),
		MaxOutputTokens:   int32(c.MaxTokens),
		SystemInstruction: genai.NewContentFromText(c.System, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(c.User), config)
	if err != nil {
		return reply{}, fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return reply{}, fmt.Errorf("gemini: empty response")
	}
	var tokens int64
	if resp.UsageMetadata != nil {
		tokens = int64(resp.UsageMetadata.TotalTokenCount)
	}
	return reply{Text: resp.Text(), Tokens: tokens}, nil
}
