// Package main is the entry point for the BidKE auth API.
// It constructs all dependencies, wires them together and starts the
// HTTP server. Connection lifecycles are owned here, not by globals.
package main

import (
	"log"
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/config"
	"github.com/kalu-Peter/BidKE-sub002/internal/handlers"
	"github.com/kalu-Peter/BidKE-sub002/internal/middleware"
	"github.com/kalu-Peter/BidKE-sub002/internal/ratelimit"
	"github.com/kalu-Peter/BidKE-sub002/internal/repositories"
	"github.com/kalu-Peter/BidKE-sub002/internal/repositories/cache"
	"github.com/kalu-Peter/BidKE-sub002/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadEnv()

	db, err := repositories.NewDB(repositories.DefaultDBConfig())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to PostgreSQL, migrations applied")

	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	})
	cacheService := cache.NewCacheService(redisClient, 24*time.Hour)
	defer func() {
		if err := cacheService.Close(); err != nil {
			log.Printf("Failed to close Redis connection: %v", err)
		}
	}()

	userRepo := repositories.NewUserRepository(db, cacheService)
	sessionRepo := repositories.NewSessionRepository(db)
	limiter := ratelimit.New(redisClient)

	authService := auth.NewService(userRepo, sessionRepo, limiter, auth.DefaultConfig())
	authMW := middleware.NewAuthMiddleware(sessionRepo)

	// Sweep expired sessions in the background.
	go func() {
		ticker := time.NewTicker(config.GetDurationEnv("SESSION_SWEEP_INTERVAL", time.Hour))
		defer ticker.Stop()
		for range ticker.C {
			if n, err := sessionRepo.DeleteExpired(); err != nil {
				log.Printf("Session sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("Session sweep removed %d expired sessions", n)
			}
		}
	}()

	// Periodic connection pool stats for operations visibility.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			stats := sqlDB.Stats()
			log.Printf("DB Stats: Open=%d, Idle=%d, InUse=%d, WaitCount=%d, WaitDuration=%s",
				stats.OpenConnections, stats.Idle, stats.InUse, stats.WaitCount, stats.WaitDuration)
		}
	}()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowCredentials: true,
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	handlers.SetupRoutes(app, &handlers.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		User:   handlers.NewUserHandler(authService, userRepo),
		Health: handlers.NewHealthHandler(db, cacheService),
		AuthMW: authMW,
	})

	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "3000")))
}
