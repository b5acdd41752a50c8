package utils

import (
	"testing"
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateAccessToken(&models.UserClaims{
		UserID:    42,
		Username:  "pkalu",
		Role:      "seller",
		SessionID: 7,
	}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "pkalu", claims.Username)
	assert.Equal(t, "seller", claims.Role)
	assert.Equal(t, uint(7), claims.SessionID)
	assert.Equal(t, "bidke-api", claims.Issuer)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateAccessToken(&models.UserClaims{UserID: 1, Username: "a", Role: "buyer"}, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token + "x")
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateAccessToken(&models.UserClaims{UserID: 1, Username: "a", Role: "buyer"}, time.Hour)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestGenerateAccessTokenRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := GenerateAccessToken(&models.UserClaims{UserID: 1}, time.Hour)
	assert.Error(t, err)
}
