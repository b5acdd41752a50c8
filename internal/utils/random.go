package utils

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const tokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a cryptographically strong random string
// of length n drawn from an alphanumeric charset.
func GenerateRandomString(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(tokenCharset)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(tokenCharset[idx.Int64()])
	}
	return sb.String(), nil
}

// GenerateSessionToken returns an opaque high-entropy session token.
func GenerateSessionToken() (string, error) {
	return GenerateRandomString(64)
}

// GenerateRefreshToken returns a refresh token in a namespace distinct
// from session tokens.
func GenerateRefreshToken() (string, error) {
	random, err := GenerateRandomString(32)
	if err != nil {
		return "", err
	}
	return "rt_" + uuid.NewString() + "_" + random, nil
}

// GenerateVerificationCode returns a 6-digit numeric code, zero-padded.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := n.String()
	for len(code) < 6 {
		code = "0" + code
	}
	return code, nil
}
