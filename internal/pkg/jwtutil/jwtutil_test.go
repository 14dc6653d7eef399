package jwtutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken("secret", time.Hour, 7, "ada")
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)

	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "7", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	valid, err := GenerateToken("secret", time.Hour, 7, "ada")
	require.NoError(t, err)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: "ghost"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]struct {
		secret string
		token  string
	}{
		"wrong secret": {"other", valid},
		"expired":      {"secret", expired},
		"garbage":      {"secret", "not.a.token"},
		"no user id":   {"secret", noUser},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseToken(tc.secret, tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGenerateToken_EmptySecret(t *testing.T) {
	_, err := GenerateToken("", time.Hour, 1, "ada")

	assert.Error(t, err)
}
