package handlers

import (
	"errors"

	"bankcards/internal/repositories"
	"bankcards/internal/services/card"
	"bankcards/internal/services/transfer"
	"bankcards/internal/services/user"
	"bankcards/internal/services/vault"
	"bankcards/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// domainError maps service errors to stable HTTP statuses so clients can
// react to the category without parsing message text.
func domainError(c *fiber.Ctx, err error) error {
	var notActive *card.NotActiveError
	var insufficient *transfer.InsufficientFundsError

	switch {
	case errors.Is(err, card.ErrCardNotFound),
		errors.Is(err, card.ErrUserNotFound),
		errors.Is(err, repositories.ErrUserNotFound):
		return response.Error(c, fiber.StatusNotFound, err.Error())

	case errors.Is(err, card.ErrSecurityViolation):
		return response.Error(c, fiber.StatusForbidden, err.Error())

	case errors.Is(err, transfer.ErrInvalidAmount),
		errors.Is(err, transfer.ErrSameCard),
		errors.Is(err, vault.ErrEmptyCardNumber),
		errors.Is(err, user.ErrWeakPassword):
		return response.BadRequest(c, err.Error())

	case errors.As(err, &insufficient):
		return response.BadRequest(c, err.Error())

	case errors.As(err, &notActive),
		errors.Is(err, card.ErrCardAlreadyBlocked),
		errors.Is(err, card.ErrCardAlreadyActive),
		errors.Is(err, card.ErrNonZeroBalance),
		errors.Is(err, card.ErrHasTransferHistory),
		errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, user.ErrEmailTaken):
		return response.Error(c, fiber.StatusConflict, err.Error())

	case errors.Is(err, repositories.ErrLockTimeout):
		return response.Error(c, fiber.StatusServiceUnavailable, "operation timed out due to contention, retry")

	default:
		logrus.Errorf("unhandled service error: %v", err)
		return response.ServerError(c, "internal server error")
	}
}
