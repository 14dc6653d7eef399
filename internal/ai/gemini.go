package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API through the genai SDK.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClient builds a Gemini API client. An empty BaseURL uses the SDK
// default endpoint.
func NewGeminiClient(cfg ProviderConfig, timeout time.Duration) (*GeminiClient, error) {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: strings.TrimRight(base, "/") + "/"}
	}
	client, err := genai.NewClient(context.Background(), clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client failed: %w", err)
	}
	return &GeminiClient{client: client, model: cfg.Model, timeout: timeout}, nil
}

func (c *GeminiClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.EmbedContent(ctx, c.model, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return resp.Embeddings[0].Values, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, params GenerationParams) GenerationResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), generateConfig(params))
	if err != nil {
		return Failed(fmt.Errorf("llm request failed: %w", err))
	}

	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return Blocked(string(fb.BlockReason))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return Failed(fmt.Errorf("empty llm candidates"))
	}

	candidate := resp.Candidates[0]
	text := candidateText(candidate)
	if text == "" {
		if candidate.FinishReason == genai.FinishReasonSafety {
			return Blocked(string(candidate.FinishReason))
		}
		return Failed(fmt.Errorf("llm candidate has no content (finish reason %q)", candidate.FinishReason))
	}
	return Generated(text)
}

func generateConfig(params GenerationParams) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(params.Temperature),
		TopP:            genai.Ptr(params.TopP),
		TopK:            genai.Ptr(float32(params.TopK)),
		MaxOutputTokens: int32(params.MaxOutputTokens),
	}
	for _, s := range params.Safety {
		cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
			Category:  genai.HarmCategory(s.Category),
			Threshold: genai.HarmBlockThreshold(s.Threshold),
		})
	}
	return cfg
}

func candidateText(candidate *genai.Candidate) string {
	if candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
