package handlers

import (
	"errors"
	"log"

	"github.com/kalu-Peter/BidKE-sub002/internal/middleware"
	"github.com/kalu-Peter/BidKE-sub002/internal/models"
	"github.com/kalu-Peter/BidKE-sub002/internal/services/auth"
	"github.com/kalu-Peter/BidKE-sub002/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// respondAuthError maps a façade error to its envelope. Anything that is
// not a terminal auth.Error is an unexpected failure: logged in full
// server-side, surfaced as a generic 500.
func respondAuthError(c *fiber.Ctx, err error) error {
	var authErr *auth.Error
	if errors.As(err, &authErr) {
		if authErr.Data != nil {
			return utils.FailWithData(c, authErr.Status, authErr.Message, authErr.Data)
		}
		return utils.Fail(c, authErr.Status, authErr.Message)
	}
	log.Printf("unexpected auth error: %v", err)
	return utils.InternalError(c, "Something went wrong. Please try again.")
}

// Register handles new account creation.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input models.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Register(c.Context(), &input, c.IP())
	if err != nil {
		return respondAuthError(c, err)
	}

	return utils.Created(c, "Registration successful", result)
}

// Login authenticates a user for a requested role and issues tokens.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input models.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Login(c.Context(), &input, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return respondAuthError(c, err)
	}

	return utils.Success(c, "Login successful", result)
}

// VerifyEmail confirms an account with the code issued at registration.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var input struct {
		UserID           uint   `json:"user_id"`
		VerificationCode string `json:"verification_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.VerifyEmail(c.Context(), input.UserID, input.VerificationCode)
	if err != nil {
		return respondAuthError(c, err)
	}

	return utils.Success(c, "Email verified", result)
}

// ApplySeller files a seller application for the authenticated user.
func (h *AuthHandler) ApplySeller(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		BusinessName string `json:"business_name"`
		BusinessType string `json:"business_type"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request body")
	}

	app, err := h.authService.ApplySeller(c.Context(), claims.UserID, input.BusinessName, input.BusinessType)
	if err != nil {
		return respondAuthError(c, err)
	}

	return utils.Created(c, "Seller application submitted", fiber.Map{
		"application_submitted": true,
		"status":                app.Status,
		"business_name":         app.BusinessName,
		"business_type":         app.BusinessType,
	})
}

// RefreshToken exchanges a refresh token for a new access token.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.Unauthorized(c, "Refresh token not provided")
	}

	token, err := h.authService.RefreshToken(c.Context(), input.RefreshToken)
	if err != nil {
		return respondAuthError(c, err)
	}

	return utils.Success(c, "Token refreshed", fiber.Map{"token": token})
}

// Logout deletes the session behind the presented token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	if err := h.authService.Logout(c.Context(), claims.SessionID); err != nil {
		return respondAuthError(c, err)
	}

	return utils.Success(c, "Successfully logged out", nil)
}
