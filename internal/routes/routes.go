// Package routes wires repositories, services and handlers and declares the
// route table.
package routes

import (
	"time"

	"bankcards/internal/config"
	"bankcards/internal/handlers"
	"bankcards/internal/middleware"
	"bankcards/internal/repositories"
	"bankcards/internal/services/auth"
	"bankcards/internal/services/card"
	"bankcards/internal/services/transfer"
	"bankcards/internal/services/user"
	"bankcards/internal/services/vault"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes. The vault is constructed in
// main so a missing encryption secret aborts startup before the server binds.
func SetupRoutes(app *fiber.App, db *gorm.DB, vaultSvc vault.Service) {
	lockTimeout := config.GetDurationEnv("TRANSFER_LOCK_TIMEOUT", 3*time.Second)
	cardRepo := repositories.NewCardRepository(db, lockTimeout)
	userRepo := repositories.NewUserRepository(db)

	jwtSecret := config.GetEnv("JWT_SECRET", "bankcards")
	refreshSecret := config.GetEnv("REFRESH_SECRET", "bankcards-refresh")
	authService := auth.NewService(userRepo, jwtSecret, refreshSecret)
	userService := user.NewService(userRepo)
	cardService := card.NewService(cardRepo, userRepo, vaultSvc, repositories.CacheService)
	transferService := transfer.NewService(cardRepo, vaultSvc)

	authHandler := handlers.NewAuthHandler(authService, userService)
	cardHandler := handlers.NewCardHandler(cardService)
	transferHandler := handlers.NewTransferHandler(transferService)

	authMW := middleware.NewAuthMiddleware(authService)

	app.Get("/health", handlers.Health)

	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	// Authenticated user endpoints
	authed := api.Group("", authMW.Handler)
	authed.Get("/cards", cardHandler.ListMyCards)
	authed.Get("/cards/:id", cardHandler.GetCard)
	authed.Get("/cards/:id/balance", cardHandler.GetBalance)
	authed.Post("/cards/:id/block", cardHandler.RequestBlock)
	authed.Post("/transfers", transferHandler.Transfer)

	// Administrative endpoints
	admin := api.Group("/admin", authMW.Handler, middleware.AdminOnly)
	admin.Post("/cards", cardHandler.CreateCard)
	admin.Get("/cards", cardHandler.ListAllCards)
	admin.Post("/cards/:id/confirm-block", cardHandler.ConfirmBlock)
	admin.Post("/cards/:id/reject-block", cardHandler.RejectBlock)
	admin.Post("/cards/:id/activate", cardHandler.Activate)
	admin.Delete("/cards/:id", cardHandler.Delete)
}
