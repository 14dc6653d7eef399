package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingProvider(t *testing.T) {
	p, err := NewEmbeddingProvider("gemini", ProviderConfig{}, time.Second)
	require.NoError(t, err)
	assert.Nil(t, p, "missing key means fallback only")

	p, err = NewEmbeddingProvider("none", ProviderConfig{APIKey: "k"}, time.Second)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = NewEmbeddingProvider("OpenAI", ProviderConfig{APIKey: "k"}, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &OpenAICompatibleClient{}, p)

	p, err = NewEmbeddingProvider("gemini", ProviderConfig{APIKey: "k"}, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &GeminiClient{}, p)

	_, err = NewEmbeddingProvider("bogus", ProviderConfig{APIKey: "k"}, time.Second)
	assert.Error(t, err)
}

func TestNewGenerator_WithoutKeyAlwaysFails(t *testing.T) {
	g, err := NewGenerator("gemini", ProviderConfig{}, time.Second)
	require.NoError(t, err)

	res := g.Generate(context.Background(), "prompt", DefaultGenerationParams())

	assert.Equal(t, GenerationFailed, res.Status)
	assert.ErrorIs(t, res.Err, ErrMissingAPIKey)
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	_, err := NewGenerator("bogus", ProviderConfig{APIKey: "k"}, time.Second)

	assert.Error(t, err)
}

func TestGenerationStatus_String(t *testing.T) {
	assert.Equal(t, "ok", GenerationOK.String())
	assert.Equal(t, "blocked", GenerationBlocked.String())
	assert.Equal(t, "failed", GenerationFailed.String())
}
