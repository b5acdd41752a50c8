package handlers

import (
	"github.com/kalu-Peter/BidKE-sub002/internal/repositories/cache"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewHealthHandler(db *gorm.DB, cacheService *cache.CacheService) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheService}
}

// Check reports liveness of the service and its dependencies.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "connected"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unavailable"
	}

	redisStatus := "connected"
	if h.cache == nil || h.cache.HealthCheck(c.Context()) != nil {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus != "connected" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  "ok",
		"version": "1.0.0",
		"services": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
