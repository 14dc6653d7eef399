package rag

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// EmbeddingProvider is the remote embedding service.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Tokenizer maps text to an ordered sequence of non-negative token ids.
type Tokenizer interface {
	Encode(text string) []int
}

// Embedder turns text into a vector. Provider failures degrade to a
// deterministic token-frequency vector and are never returned to the caller.
type Embedder struct {
	provider  EmbeddingProvider
	tokenizer Tokenizer
	dimension int
	timeout   time.Duration
}

// NewEmbedder builds an Embedder. A nil provider means every call takes the
// fallback path, which is how a missing API key is handled. The tokenizer is
// required.
func NewEmbedder(provider EmbeddingProvider, tokenizer Tokenizer, dimension int, timeout time.Duration) (*Embedder, error) {
	if tokenizer == nil {
		return nil, ErrNilTokenizer
	}
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Embedder{
		provider:  provider,
		tokenizer: tokenizer,
		dimension: dimension,
		timeout:   timeout,
	}, nil
}

func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns the provider's vector when the call succeeds with a
// non-empty vector, otherwise the fallback vector.
func (e *Embedder) Embed(ctx context.Context, text string) Vector {
	if e.provider == nil || text == "" {
		return e.Fallback(text)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vec, err := e.provider.EmbedText(callCtx, text)
	if err != nil {
		log.Warn().Err(err).Int("text_len", len(text)).Msg("embedding provider failed, using fallback")
		return e.Fallback(text)
	}
	if len(vec) == 0 {
		log.Warn().Msg("embedding provider returned empty vector, using fallback")
		return e.Fallback(text)
	}
	return Vector(vec)
}

// Fallback computes the token-frequency vector for text.
func (e *Embedder) Fallback(text string) Vector {
	if text == "" {
		return make(Vector, e.dimension)
	}
	return FallbackEmbedding(e.tokenizer.Encode(text), e.dimension)
}

// FallbackEmbedding folds token counts into a vector of length dim. Distinct
// ids are visited in first-occurrence order and written at id mod dim as
// (v + count) / total. Ids that collide on a position share it, so the
// result is a coarse approximation rather than a semantic embedding.
func FallbackEmbedding(tokens []int, dim int) Vector {
	if dim <= 0 {
		dim = DefaultDimension
	}
	vec := make(Vector, dim)
	if len(tokens) == 0 {
		return vec
	}

	counts := make(map[int]int, len(tokens))
	order := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	total := float32(len(tokens))
	for _, tok := range order {
		pos := tok % dim
		if pos < 0 {
			pos += dim
		}
		vec[pos] = (vec[pos] + float32(counts[tok])) / total
	}
	return vec
}
