package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAICompatibleClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAICompatibleClient targets any OpenAI-compatible endpoint
// (OpenAI, DashScope compatible mode, local gateways).
func NewOpenAICompatibleClient(cfg ProviderConfig, timeout time.Duration) *OpenAICompatibleClient {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" {
		clientCfg.BaseURL = base
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAICompatibleClient{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
	}
}

// EmbedText returns the embedding vector for the given text.
func (c *OpenAICompatibleClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embedding input is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return resp.Data[0].Embedding, nil
}

// Generate sends the prompt as a single user message.
func (c *OpenAICompatibleClient) Generate(ctx context.Context, prompt string, params GenerationParams) GenerationResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxOutputTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "content_filter" {
			return Blocked(apiErr.Message)
		}
		return Failed(fmt.Errorf("llm request failed: %w", err))
	}
	if len(resp.Choices) == 0 {
		return Failed(fmt.Errorf("empty llm choices"))
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return Blocked(string(choice.FinishReason))
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return Failed(fmt.Errorf("llm returned empty content"))
	}
	return Generated(choice.Message.Content)
}
