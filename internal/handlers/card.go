package handlers

import (
	"bankcards/internal/models"
	"bankcards/internal/services/card"
	"bankcards/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// CardHandler exposes card lifecycle endpoints.
type CardHandler struct {
	service card.Service
}

func NewCardHandler(s card.Service) *CardHandler { return &CardHandler{service: s} }

// CreateCard handles POST /admin/cards.
func (h *CardHandler) CreateCard(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"user_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	view, err := h.service.CreateCard(c.Context(), req.UserID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "card created", view)
}

// RequestBlock handles POST /cards/:id/block for the card owner.
func (h *CardHandler) RequestBlock(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid card id")
	}

	view, err := h.service.RequestBlock(c.Context(), claims.UserID, uint(cardID))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "block requested", view)
}

// ConfirmBlock handles POST /admin/cards/:id/confirm-block.
func (h *CardHandler) ConfirmBlock(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid card id")
	}

	view, err := h.service.ConfirmBlock(c.Context(), uint(cardID))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "card blocked", view)
}

// RejectBlock handles POST /admin/cards/:id/reject-block.
func (h *CardHandler) RejectBlock(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid card id")
	}

	view, err := h.service.RejectBlock(c.Context(), uint(cardID))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "block rejected", view)
}

// Activate handles POST /admin/cards/:id/activate.
func (h *CardHandler) Activate(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid card id")
	}

	view, err := h.service.Activate(c.Context(), uint(cardID))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "card activated", view)
}

// Delete handles DELETE /admin/cards/:id.
func (h *CardHandler) Delete(c *fiber.Ctx) error {
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid card id")
	}

	if err := h.service.Delete(c.Context(), uint(cardID)); err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "card deleted", nil)
}

// GetCard handles GET /cards/:id for the card owner.
func (h *CardHandler) GetCard(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid card id")
	}

	view, err := h.service.GetCard(c.Context(), claims.UserID, uint(cardID))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "card", view)
}

// GetBalance handles GET /cards/:id/balance for the card owner.
func (h *CardHandler) GetBalance(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)
	cardID, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "invalid card id")
	}

	balance, err := h.service.GetBalance(c.Context(), claims.UserID, uint(cardID))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "balance", fiber.Map{"balance": balance})
}

// ListMyCards handles GET /cards.
func (h *CardHandler) ListMyCards(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	views, err := h.service.ListUserCards(c.Context(), claims.UserID)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "cards", views)
}

// ListAllCards handles GET /admin/cards.
func (h *CardHandler) ListAllCards(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	views, err := h.service.ListAllCards(c.Context(), limit, offset)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "cards", views)
}
