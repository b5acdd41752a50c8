package utils

import "github.com/gofiber/fiber/v2"

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful envelope with optional data.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return Respond(c, fiber.StatusOK, body)
}

// Created sends a 201 envelope with optional data.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return Respond(c, fiber.StatusCreated, body)
}

// Fail sends an error envelope with the given status code.
func Fail(c *fiber.Ctx, status int, message string) error {
	return Respond(c, status, fiber.Map{"success": false, "error": message})
}

// FailWithData sends an error envelope carrying extra detail fields.
func FailWithData(c *fiber.Ctx, status int, message string, data interface{}) error {
	return Respond(c, status, fiber.Map{"success": false, "error": message, "data": data})
}

// BadRequest sends an error envelope with status 400.
func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends an error envelope with status 401.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends an error envelope with status 403.
func Forbidden(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusForbidden, message)
}

// NotFound sends an error envelope with status 404.
func NotFound(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusNotFound, message)
}

// MethodNotAllowed sends an error envelope with status 405.
func MethodNotAllowed(c *fiber.Ctx) error {
	return Fail(c, fiber.StatusMethodNotAllowed, "Method not allowed")
}

// InternalError sends an error envelope with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusInternalServerError, message)
}
