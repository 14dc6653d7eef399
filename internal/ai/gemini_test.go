package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGeminiServer(t *testing.T, status int, body string, inspect func(r *http.Request, payload map[string]interface{})) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var payload map[string]interface{}
		_ = json.Unmarshal(raw, &payload)
		if inspect != nil {
			inspect(r, payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestGemini(t *testing.T, baseURL, model string, timeout time.Duration) *GeminiClient {
	t.Helper()
	c, err := NewGeminiClient(ProviderConfig{BaseURL: baseURL, APIKey: "secret", Model: model}, timeout)
	require.NoError(t, err)
	return c
}

func TestGeminiClient_EmbedText(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK, `{"embeddings":[{"values":[0.5,-0.25,1]}]}`, func(r *http.Request, payload map[string]interface{}) {
		assert.Contains(t, r.URL.Path, "models/embedding-001:")
		assert.NotEmpty(t, payload)
	})
	c := newTestGemini(t, srv.URL, "embedding-001", time.Second)

	vec, err := c.EmbedText(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -0.25, 1}, vec)
}

func TestGeminiClient_EmbedTextErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"error object":   {http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`},
		"missing values": {http.StatusOK, `{"embeddings":[{}]}`},
		"not json":       {http.StatusBadGateway, `<html>bad gateway</html>`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newGeminiServer(t, tc.status, tc.body, nil)
			c := newTestGemini(t, srv.URL, "m", time.Second)

			_, err := c.EmbedText(context.Background(), "hello")

			assert.Error(t, err)
		})
	}

	c := newTestGemini(t, "http://127.0.0.1:1", "m", time.Second)
	_, err := c.EmbedText(context.Background(), "  ")
	assert.Error(t, err, "blank input is rejected before any request")
}

func TestGeminiClient_Generate(t *testing.T) {
	srv := newGeminiServer(t, http.StatusOK,
		`{"candidates":[{"content":{"role":"model","parts":[{"text":"## Gap\nFound one."}]},"finishReason":"STOP"}]}`,
		func(r *http.Request, payload map[string]interface{}) {
			assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-pro:generateContent"), r.URL.Path)
			cfg, ok := payload["generationConfig"].(map[string]interface{})
			require.True(t, ok)
			assert.EqualValues(t, 40, cfg["topK"])
			assert.EqualValues(t, 4096, cfg["maxOutputTokens"])
			safety, ok := payload["safetySettings"].([]interface{})
			require.True(t, ok)
			assert.Len(t, safety, 4)
		})
	c := newTestGemini(t, srv.URL, "gemini-pro", time.Second)

	res := c.Generate(context.Background(), "prompt", DefaultGenerationParams())

	assert.Equal(t, GenerationOK, res.Status)
	assert.Equal(t, "## Gap\nFound one.", res.Text)
}

func TestGeminiClient_GenerateOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   GenerationStatus
	}{
		{"prompt blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, GenerationBlocked},
		{"candidate blocked", http.StatusOK, `{"candidates":[{"finishReason":"SAFETY"}]}`, GenerationBlocked},
		{"error object", http.StatusBadRequest, `{"error":{"code":400,"message":"bad request","status":"INVALID_ARGUMENT"}}`, GenerationFailed},
		{"no candidates", http.StatusOK, `{}`, GenerationFailed},
		{"empty candidate", http.StatusOK, `{"candidates":[{"finishReason":"MAX_TOKENS"}]}`, GenerationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newGeminiServer(t, tt.status, tt.body, nil)
			c := newTestGemini(t, srv.URL, "m", time.Second)

			res := c.Generate(context.Background(), "prompt", DefaultGenerationParams())

			assert.Equal(t, tt.want, res.Status)
			if tt.want == GenerationFailed {
				assert.Error(t, res.Err)
			}
			if tt.want == GenerationBlocked {
				assert.Equal(t, "SAFETY", res.BlockReason)
			}
		})
	}
}

func TestGeminiClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()
	c := newTestGemini(t, srv.URL, "m", 30*time.Millisecond)

	res := c.Generate(context.Background(), "prompt", DefaultGenerationParams())

	assert.Equal(t, GenerationFailed, res.Status)
}
