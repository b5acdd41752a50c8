package utils

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateAccessToken signs a JWT embedding the user id, username, login
// role and session id. The JWT secret is expected to be set in the
// environment variable JWT_SECRET.
func GenerateAccessToken(claims *models.UserClaims, ttl time.Duration) (string, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return "", errors.New("JWT_SECRET not configured")
	}

	now := time.Now()

	fullClaims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "bidke-api",
			Subject:   strconv.FormatUint(uint64(claims.UserID), 10),
		},
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		SessionID: claims.SessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, fullClaims)
	return token.SignedString([]byte(jwtSecret))
}

// ParseToken parses and validates a signed access token.
func ParseToken(tokenStr string) (*models.UserClaims, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
