package transfer

import (
	"errors"
	"fmt"

	"bankcards/internal/services/card"
)

var (
	ErrInvalidAmount = errors.New("transfer amount must be greater than zero")
	ErrSameCard      = errors.New("cannot transfer between the same card")

	// ErrForeignCard is raised when a requester tries to move funds through
	// a card they do not own. It wraps the shared security-violation marker.
	ErrForeignCard = fmt.Errorf("%w: cannot transfer using another user's card", card.ErrSecurityViolation)
)

// InsufficientFundsError names the source card that could not cover the
// requested amount.
type InsufficientFundsError struct {
	CardID uint
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on card %d", e.CardID)
}
