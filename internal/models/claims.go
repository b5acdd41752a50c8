package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims is the signed access-token payload. The session id ties the
// token to a server-side session row so sessions can be revoked.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	SessionID uint   `json:"session_id"`
}
