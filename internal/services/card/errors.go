package card

import (
	"errors"
	"fmt"
)

var (
	ErrCardNotFound = errors.New("card not found")
	ErrUserNotFound = errors.New("user not found")

	// ErrSecurityViolation marks errors that stem from one principal acting
	// on another's card. Callers can alert on these separately from ordinary
	// business-rule failures.
	ErrSecurityViolation = errors.New("security violation")

	ErrNotCardOwner = fmt.Errorf("%w: card belongs to another user", ErrSecurityViolation)

	ErrCardAlreadyBlocked = errors.New("card is already blocked")
	ErrCardAlreadyActive  = errors.New("card is already active")
	ErrNonZeroBalance     = errors.New("cannot delete card with non-zero balance")
	ErrHasTransferHistory = errors.New("cannot delete card with transfer history")
)

// NotActiveError reports which card blocked an operation by not being in
// ACTIVE status.
type NotActiveError struct {
	CardID uint
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("card %d is not active", e.CardID)
}
