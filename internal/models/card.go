package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CardStatus is the lifecycle state of a card.
type CardStatus string

const (
	CardStatusActive         CardStatus = "ACTIVE"
	CardStatusBlockRequested CardStatus = "BLOCK_REQUESTED"
	CardStatusBlocked        CardStatus = "BLOCKED"
	CardStatusExpired        CardStatus = "EXPIRED"
)

// CardValidityYears is how long a newly issued card stays valid.
const CardValidityYears = 3

// Card represents a payment card. The card number is stored encrypted only;
// the plaintext never touches the database.
type Card struct {
	ID              uint            `gorm:"primarykey"`
	EncryptedNumber string          `gorm:"uniqueIndex;not null"`
	UserID          uint            `gorm:"not null;index"`
	Status          CardStatus      `gorm:"type:varchar(20);default:'ACTIVE'"`
	Balance         decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	ExpiryDate      time.Time       `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
