package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTiktokenTokenizer_Offline(t *testing.T) {
	t.Setenv("TIKTOKEN_CACHE_DIR", t.TempDir())
	t.Setenv("HTTPS_PROXY", "http://127.0.0.1:1")
	t.Setenv("HTTP_PROXY", "http://127.0.0.1:1")

	tok, err := NewTiktokenTokenizer("")
	require.NoError(t, err)

	ids := tok.Encode("hello world")
	assert.NotEmpty(t, ids)
	assert.Equal(t, ids, tok.Encode("hello world"))
	for _, id := range ids {
		assert.GreaterOrEqual(t, id, 0)
	}
}

func TestNewTiktokenTokenizer_UnknownEncoding(t *testing.T) {
	_, err := NewTiktokenTokenizer("not_an_encoding")

	assert.Error(t, err)
}
