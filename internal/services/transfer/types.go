package transfer

import (
	"time"

	"github.com/shopspring/decimal"
)

// View is the response shape of a completed transfer. Card numbers are
// always masked.
type View struct {
	ID               uint            `json:"id"`
	Reference        string          `json:"reference"`
	FromMaskedNumber string          `json:"from_masked_number"`
	ToMaskedNumber   string          `json:"to_masked_number"`
	Amount           decimal.Decimal `json:"amount"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}
