package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

var ErrMissingAPIKey = errors.New("provider api key not configured")

// EmbeddingProvider is a remote text-embedding service.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// NewEmbeddingProvider returns nil when no provider is configured or the API
// key is empty; callers then embed with the local fallback only.
func NewEmbeddingProvider(kind string, cfg ProviderConfig, timeout time.Duration) (EmbeddingProvider, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" || kind == ProviderNone || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil
	}
	switch kind {
	case ProviderOpenAI:
		return NewOpenAICompatibleClient(cfg, timeout), nil
	case ProviderGemini:
		client, err := NewGeminiClient(cfg, timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", kind)
	}
}

// NewGenerator builds the generation client. Without an API key every call
// fails with ErrMissingAPIKey.
func NewGenerator(kind string, cfg ProviderConfig, timeout time.Duration) (Generator, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if strings.TrimSpace(cfg.APIKey) == "" {
		return unavailableGenerator{err: ErrMissingAPIKey}, nil
	}
	switch kind {
	case ProviderOpenAI:
		return NewOpenAICompatibleClient(cfg, timeout), nil
	case ProviderGemini, "":
		client, err := NewGeminiClient(cfg, timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", kind)
	}
}

type unavailableGenerator struct {
	err error
}

func (g unavailableGenerator) Generate(context.Context, string, GenerationParams) GenerationResult {
	return Failed(g.err)
}
