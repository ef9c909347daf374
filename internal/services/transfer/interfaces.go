package transfer

import (
	"context"

	"github.com/shopspring/decimal"
)

// Service moves funds between two cards atomically.
type Service interface {
	// Transfer debits fromCardID and credits toCardID by amount inside one
	// unit of work, recording an audit row. Both cards must belong to the
	// requester and be ACTIVE. Lock waits are bounded; on timeout the whole
	// unit aborts with a retryable contention error.
	Transfer(ctx context.Context, requesterID, fromCardID, toCardID uint, amount decimal.Decimal) (*View, error)
}
