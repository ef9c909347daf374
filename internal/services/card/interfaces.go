package card

import (
	"context"

	"bankcards/internal/models"

	"github.com/shopspring/decimal"
)

// Service manages the card lifecycle. Requester identity is always passed
// explicitly; nothing is read from ambient state.
type Service interface {
	// CreateCard issues a new ACTIVE card for the given user (admin action).
	CreateCard(ctx context.Context, userID uint) (*View, error)

	// RequestBlock lets a card's owner ask for it to be blocked. A request
	// by anyone else is a security violation.
	RequestBlock(ctx context.Context, requesterID, cardID uint) (*View, error)

	// ConfirmBlock and RejectBlock resolve a pending block request
	// (admin actions).
	ConfirmBlock(ctx context.Context, cardID uint) (*View, error)
	RejectBlock(ctx context.Context, cardID uint) (*View, error)

	// Activate re-activates a blocked card (admin action).
	Activate(ctx context.Context, cardID uint) (*View, error)

	// Delete removes a card that holds no funds and has no transfer history
	// (admin action).
	Delete(ctx context.Context, cardID uint) error

	// GetCard returns one of the requester's own cards, masked.
	GetCard(ctx context.Context, requesterID, cardID uint) (*View, error)

	// GetBalance returns the balance of one of the requester's own cards.
	GetBalance(ctx context.Context, requesterID, cardID uint) (decimal.Decimal, error)

	// ListUserCards returns the requester's cards, masked.
	ListUserCards(ctx context.Context, userID uint) ([]*View, error)

	// ListAllCards returns every card in the system (admin action).
	ListAllCards(ctx context.Context, limit, offset int) ([]*View, error)
}

// EnsureActive rejects any card that is not in ACTIVE status. Shared with
// the transfer engine, which checks eligibility after acquiring row locks.
func EnsureActive(c *models.Card) error {
	if c.Status != models.CardStatusActive {
		return &NotActiveError{CardID: c.ID}
	}
	return nil
}
