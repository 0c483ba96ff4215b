package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("secret", 5, "ana", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, "ana", claims.Username)
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := GenerateToken("secret", 5, "ana", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken("other-secret", tok)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	tok, err := GenerateToken("secret", 5, "ana", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken("secret", tok)
	assert.Error(t, err)
}

func TestTokenEmptySecret(t *testing.T) {
	_, err := GenerateToken("", 5, "ana", time.Hour)
	assert.Error(t, err)
}
