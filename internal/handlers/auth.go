package handlers

import (
	"errors"

	"bankcards/internal/services/auth"
	"bankcards/internal/services/user"
	"bankcards/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler exposes registration, login and token refresh.
type AuthHandler struct {
	authService auth.Service
	userService user.Service
}

func NewAuthHandler(authService auth.Service, userService user.Service) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService}
}

// Register handles POST /register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	if req.Username == "" || req.Email == "" {
		return response.BadRequest(c, "username and email are required")
	}

	u, err := h.userService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "registered", fiber.Map{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	u, access, refresh, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return response.Unauthorized(c)
		}
		return domainError(c, err)
	}
	return response.Success(c, "logged in", fiber.Map{
		"user_id":       u.ID,
		"role":          u.Role,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Refresh handles POST /refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	access, refresh, err := h.authService.RefreshTokens(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c)
	}
	return response.Success(c, "tokens refreshed", fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
	})
}
