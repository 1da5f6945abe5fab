package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient is a thin wrapper around the official genai client. It only
// performs the API call and failure classification; retries, rate limiting
// and logging are applied via Middleware.
type GeminiClient struct {
	cli         *genai.Client
	model       string
	temperature float32
	maxTokens   int32
}

type GeminiOption func(*GeminiClient)

func WithTemperature(t float32) GeminiOption {
	return func(g *GeminiClient) { g.temperature = t }
}

func WithMaxOutputTokens(n int32) GeminiOption {
	return func(g *GeminiClient) { g.maxTokens = n }
}

func NewGeminiClient(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, NewGenerationError(InvalidCredential, "GEMINI_API_KEY is not set", nil)
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	g := &GeminiClient{cli: cli, model: model, temperature: 0.7, maxTokens: 2048}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	temp := g.temperature
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{Temperature: &temp, MaxOutputTokens: g.maxTokens},
	)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", NewGenerationError(Generic, "request cancelled", err)
		}
		return "", AsGenerationError(err)
	}
	return responseText(resp)
}

// responseText joins the text parts of the first candidate, reporting
// prompt blocks and safety stops as SafetyFiltered.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", NewGenerationError(Generic, "empty response", nil)
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", NewGenerationError(SafetyFiltered, "prompt blocked: "+string(fb.BlockReason), nil)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", NewGenerationError(Generic, "no candidates returned", nil)
	}
	cand := resp.Candidates[0]
	if cand.FinishReason == genai.FinishReasonSafety || cand.FinishReason == genai.FinishReasonProhibitedContent {
		return "", NewGenerationError(SafetyFiltered, "response stopped: "+string(cand.FinishReason), nil)
	}
	if cand.Content == nil {
		return "", NewGenerationError(Generic, "candidate has no content", nil)
	}
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String(), nil
}
