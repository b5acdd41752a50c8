package handlers

import (
	"github.com/kalu-Peter/BidKE-sub002/internal/middleware"
	"github.com/kalu-Peter/BidKE-sub002/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles everything SetupRoutes needs.
type Handlers struct {
	Auth   *AuthHandler
	User   *UserHandler
	Health *HealthHandler
	AuthMW *middleware.AuthMiddleware
}

// SetupRoutes registers all endpoints. Every known path gets a method
// guard ahead of its route so a wrong HTTP method answers 405 and a
// bare OPTIONS answers 200, before any auth middleware can turn either
// into a 401. CORS preflight OPTIONS requests are answered by the cors
// middleware before they reach the router.
func SetupRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health.Check)
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("Welcome to the BidKE API!") })

	api := app.Group("/api")

	// Method guards. Registered first so they run ahead of the
	// authenticated group's middleware.
	api.All("/register", methodGuard(fiber.MethodPost))
	api.All("/login", methodGuard(fiber.MethodPost))
	api.All("/verify-email", methodGuard(fiber.MethodPost))
	api.All("/refresh", methodGuard(fiber.MethodPost))
	api.All("/apply-seller", methodGuard(fiber.MethodPost))
	api.All("/logout", methodGuard(fiber.MethodPost))
	api.All("/profile", methodGuard(fiber.MethodGet, fiber.MethodHead))
	api.All("/sessions", methodGuard(fiber.MethodGet, fiber.MethodHead))
	api.All("/admin/users", methodGuard(fiber.MethodGet, fiber.MethodHead))

	// Public routes
	api.Post("/register", h.Auth.Register)
	api.Post("/login", h.Auth.Login)
	api.Post("/verify-email", h.Auth.VerifyEmail)
	api.Post("/refresh", h.Auth.RefreshToken)

	// Authenticated routes
	authenticated := api.Group("/", h.AuthMW.Handler)
	authenticated.Post("/apply-seller", h.Auth.ApplySeller)
	authenticated.Post("/logout", h.Auth.Logout)
	authenticated.Get("/profile", h.User.GetProfile)
	authenticated.Get("/sessions", h.User.GetSessions)

	// Admin routes
	admin := api.Group("/admin", h.AuthMW.Handler, middleware.AdminOnly)
	admin.Get("/users", h.User.ListUsers)
}

// methodGuard answers a bare OPTIONS with 200 and any method outside
// the allowed set with 405. Allowed methods fall through to the route
// (or middleware) registered behind the guard.
func methodGuard(methods ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusOK)
		}
		for _, m := range methods {
			if c.Method() == m {
				return c.Next()
			}
		}
		return utils.MethodNotAllowed(c)
	}
}
