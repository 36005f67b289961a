package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("unit-test-secret")
	SetJWTExpiry(60)

	token, err := GenerateJWTToken("user-123", "student@learnhub.test", "student")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWTToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "student@learnhub.test", claims.Email)
	require.Equal(t, "student", claims.Role)
}

func TestParseJWTTokenRejectsGarbage(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	_, err := ParseJWTToken("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWTTokenRejectsWrongSecret(t *testing.T) {
	SetJWTSecret("secret-a")
	token, err := GenerateJWTToken("user-123", "a@b.c", "admin")
	require.NoError(t, err)

	SetJWTSecret("secret-b")
	_, err = ParseJWTToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseJWTTokenExpired(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	// the smallest positive expiry still outlives the test, so sign a token
	// that was already expired at issue time
	jwtExpiry = -time.Minute
	defer SetJWTExpiry(60)

	token, err := GenerateJWTToken("user-123", "a@b.c", "student")
	require.NoError(t, err)

	_, err = ParseJWTToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, CheckPasswordHash("correct horse battery staple", hash))
	require.False(t, CheckPasswordHash("wrong password", hash))
}

func TestExtractNameFromEmail(t *testing.T) {
	require.Equal(t, "maria", ExtractNameFromEmail("maria@example.com"))
	require.Equal(t, "plain-string", ExtractNameFromEmail("plain-string"))
}

func TestGenerateSecretHash(t *testing.T) {
	first := GenerateSecretHash("user@example.com", "client-id", "client-secret")
	second := GenerateSecretHash("user@example.com", "client-id", "client-secret")
	require.Equal(t, first, second)
	require.NotEmpty(t, first)

	other := GenerateSecretHash("other@example.com", "client-id", "client-secret")
	require.NotEqual(t, first, other)
}
