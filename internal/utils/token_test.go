package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 1)

	token, exp, err := m.GenerateSessionToken("656a1b2c3d4e5f6a7b8c9d0e", "blessan@example.com", "blessan_c", "hirer")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.False(t, exp.IsZero())

	claims, err := m.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "656a1b2c3d4e5f6a7b8c9d0e", claims.Subject)
	assert.Equal(t, "blessan@example.com", claims.Email)
	assert.Equal(t, "blessan_c", claims.Username)
	assert.Equal(t, "hirer", claims.Role)
}

func TestSessionTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -1)

	token, _, err := m.GenerateSessionToken("656a1b2c3d4e5f6a7b8c9d0e", "", "", "")
	require.NoError(t, err)

	_, err = m.ParseSessionToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 1).GenerateSessionToken("656a1b2c3d4e5f6a7b8c9d0e", "", "", "")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 1).ParseSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", 1)
	_, err := m.ParseSessionToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
