package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItzYourBread/cashmash-sub000/internal/config"
)

func testJWTService(secret string) *JWTService {
	return NewJWTService(&config.Config{JWTSecret: secret, TokenTTL: time.Hour})
}

func TestJWTRoundTrip(t *testing.T) {
	svc := testJWTService("test-secret")

	token, err := svc.GenerateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := testJWTService("secret-a").GenerateToken(42)
	require.NoError(t, err)

	_, err = testJWTService("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTExpiredToken(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecret: "test-secret", TokenTTL: -time.Minute})

	token, err := svc.GenerateToken(42)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTGarbageToken(t *testing.T) {
	_, err := testJWTService("test-secret").ValidateToken("not.a.token")
	assert.Error(t, err)
}
