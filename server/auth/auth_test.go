package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateAccessToken("device-abc", time.Now().Add(time.Hour), secret)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	name, err := ParseAccessToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "device-abc", name)
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("device-abc", time.Now().Add(time.Hour), []byte("secret-a"))
	require.NoError(t, err)

	_, err = ParseAccessToken(token, []byte("secret-b"))
	assert.Error(t, err)
}

func TestAccessTokenRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateAccessToken("device-abc", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, secret)
	assert.Error(t, err)
}

func TestPairingCodeHashing(t *testing.T) {
	hash, err := HashPairingCode("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, VerifyPairingCode("correct-horse", hash))
	assert.False(t, VerifyPairingCode("battery-staple", hash))
}
