package handlers

import (
	"log"

	"github.com/kalu-Peter/BidKE-sub002/internal/middleware"
	"github.com/kalu-Peter/BidKE-sub002/internal/repositories"
	"github.com/kalu-Peter/BidKE-sub002/internal/services/auth"
	"github.com/kalu-Peter/BidKE-sub002/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const maxUserPageLimit = 100

type UserHandler struct {
	authService auth.Service
	users       repositories.UserRepository
}

func NewUserHandler(authService auth.Service, users repositories.UserRepository) *UserHandler {
	return &UserHandler{
		authService: authService,
		users:       users,
	}
}

// GetProfile returns the role-specific profile for the current session.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	profile, err := h.authService.Profile(c.Context(), claims.UserID, claims.Role)
	if err != nil {
		log.Printf("profile fetch failed for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to fetch profile")
	}

	return utils.Success(c, "Profile fetched", fiber.Map{
		"role":    claims.Role,
		"profile": profile,
	})
}

// GetSessions lists the caller's active sessions with device metadata.
func (h *UserHandler) GetSessions(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	sessions, err := h.authService.Sessions(c.Context(), claims.UserID)
	if err != nil {
		log.Printf("session list failed for user %d: %v", claims.UserID, err)
		return utils.InternalError(c, "Failed to fetch sessions")
	}

	summaries := make([]map[string]interface{}, len(sessions))
	for i := range sessions {
		summaries[i] = sessions[i].Summary()
		summaries[i]["current"] = sessions[i].ID == claims.SessionID
	}

	return utils.Success(c, "Sessions fetched", fiber.Map{"sessions": summaries})
}

// ListUsers returns a paginated user listing for administrators.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	pagination := utils.GetPagination(c, 1, maxUserPageLimit)

	users, total, err := h.users.List(pagination.Offset, pagination.Limit)
	if err != nil {
		log.Printf("user list failed: %v", err)
		return utils.InternalError(c, "Failed to fetch users")
	}
	pagination.SetTotal(total)

	return utils.Success(c, "Users fetched", fiber.Map{
		"users":      users,
		"pagination": pagination,
	})
}
