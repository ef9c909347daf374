// Package main is the entry point for the application. It initializes all
// dependencies, sets up the HTTP server, and starts the application.
package main

import (
	"time"

	"bankcards/internal/config"
	"bankcards/internal/repositories"
	"bankcards/internal/routes"
	"bankcards/internal/services/vault"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadEnv()

	if config.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// The vault is a process-level precondition: no secret, no server.
	vaultSvc, err := vault.NewService(config.GetEnv("CARD_ENCRYPTION_SECRET", ""))
	if err != nil {
		logrus.Fatalf("failed to initialize card number vault: %v", err)
	}

	if err := repositories.InitDB(); err != nil {
		logrus.Fatalf("failed to initialize database: %v", err)
	}
	defer repositories.CloseDB()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	for _, path := range []string{"/api/register", "/api/login"} {
		app.Use(path, limiter.New(limiter.Config{
			Max:        5,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "too many requests, please try again later",
				})
			},
		}))
	}

	routes.SetupRoutes(app, repositories.DB, vaultSvc)

	logrus.Fatal(app.Listen(":" + config.GetEnv("PORT", "3000")))
}
