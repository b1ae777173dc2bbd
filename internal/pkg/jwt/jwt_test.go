package jwt_test

import (
	"testing"

	"elibrary-backend/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "test-access-secret"
	refreshSecret = "test-refresh-secret"
)

func TestAccessTokenRoundtrip(t *testing.T) {
	token, err := jwt.GenerateAccessToken(7, "alice", true, accessSecret, 15)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwt.ValidateAccessToken(token, accessSecret)
	require.NoError(t, err)
	require.Equal(t, uint(7), claims.UserID)
	require.Equal(t, "alice", claims.Username)
	require.True(t, claims.IsAdmin)
	require.Equal(t, "elibrary-backend", claims.Issuer)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := jwt.GenerateAccessToken(7, "alice", false, accessSecret, 15)
	require.NoError(t, err)

	_, err = jwt.ValidateAccessToken(token, "some-other-secret")
	require.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	// Negative expiry produces an already-expired token
	token, err := jwt.GenerateAccessToken(7, "alice", false, accessSecret, -1)
	require.NoError(t, err)

	_, err = jwt.ValidateAccessToken(token, accessSecret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessTokenGarbage(t *testing.T) {
	_, err := jwt.ValidateAccessToken("not-a-jwt", accessSecret)
	require.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestRefreshTokenRoundtrip(t *testing.T) {
	token, err := jwt.GenerateRefreshToken(7, "token-id-1", refreshSecret, 7)
	require.NoError(t, err)

	claims, err := jwt.ValidateRefreshToken(token, refreshSecret)
	require.NoError(t, err)
	require.Equal(t, uint(7), claims.UserID)
	require.Equal(t, "token-id-1", claims.TokenID)
}

func TestRefreshTokenNotValidAsAccessSecret(t *testing.T) {
	token, err := jwt.GenerateRefreshToken(7, "token-id-1", refreshSecret, 7)
	require.NoError(t, err)

	_, err = jwt.ValidateRefreshToken(token, accessSecret)
	require.ErrorIs(t, err, jwt.ErrTokenInvalid)
}
