// Package middleware provides HTTP middleware for the application:
// bearer-token authentication and role gating on top of fiber.
package middleware

import (
	"log"
	"strings"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"
	"github.com/kalu-Peter/BidKE-sub002/internal/repositories"
	"github.com/kalu-Peter/BidKE-sub002/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates signed access tokens and checks that the
// session they reference still exists and has not expired, so deleting
// a session revokes its tokens immediately.
type AuthMiddleware struct {
	sessions repositories.SessionRepository
}

func NewAuthMiddleware(sessions repositories.SessionRepository) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Handler extracts the bearer token, validates it and stores the claims
// in the request context.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "Missing authorization header")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "Invalid authorization format")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("token validation error: %v", err)
		return utils.Unauthorized(c, "Invalid token")
	}

	session, err := m.sessions.GetByID(claims.SessionID)
	if err != nil || session.Expired() || session.UserID != claims.UserID {
		return utils.Unauthorized(c, "Session expired")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}

// ClaimsFromContext returns the authenticated claims, if any.
func ClaimsFromContext(c *fiber.Ctx) (*models.UserClaims, bool) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	return claims, ok
}

// AdminOnly restricts a route to admin-role sessions.
func AdminOnly(c *fiber.Ctx) error {
	claims, ok := ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}
	if claims.Role != models.RoleAdmin {
		return utils.Forbidden(c, "Insufficient permissions")
	}
	return c.Next()
}
