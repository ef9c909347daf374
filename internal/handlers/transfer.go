package handlers

import (
	"bankcards/internal/models"
	"bankcards/internal/services/transfer"
	"bankcards/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes the funds-transfer endpoint.
type TransferHandler struct {
	service transfer.Service
}

func NewTransferHandler(s transfer.Service) *TransferHandler {
	return &TransferHandler{service: s}
}

// Transfer handles POST /transfers. The amount is parsed as a decimal
// string to keep exact cent precision on the wire.
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	claims := c.Locals("claims").(*models.UserClaims)

	var req struct {
		FromCardID uint            `json:"from_card_id"`
		ToCardID   uint            `json:"to_card_id"`
		Amount     decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}

	view, err := h.service.Transfer(c.Context(), claims.UserID, req.FromCardID, req.ToCardID, req.Amount)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "transfer completed", view)
}
