package card

import (
	"time"

	"github.com/shopspring/decimal"
)

// View is the externally visible card representation. The number only ever
// appears masked.
type View struct {
	ID           uint            `json:"id"`
	MaskedNumber string          `json:"masked_number"`
	UserID       uint            `json:"user_id"`
	Status       string          `json:"status"`
	Balance      decimal.Decimal `json:"balance"`
	ExpiryDate   time.Time       `json:"expiry_date"`
}
