package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransferStatusSuccess is the only status ever persisted; failed attempts
// leave no record.
const TransferStatusSuccess = "SUCCESS"

// Transfer is an immutable audit record of one completed funds movement
// between two cards.
type Transfer struct {
	ID         uint            `gorm:"primarykey"`
	Reference  string          `gorm:"type:char(36);uniqueIndex;not null"`
	FromCardID uint            `gorm:"not null;index"`
	ToCardID   uint            `gorm:"not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Status     string          `gorm:"type:varchar(20);not null;default:'SUCCESS'"`
	CreatedAt  time.Time
}

// BeforeCreate assigns the external reference before the record is written.
func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.Reference == "" {
		t.Reference = uuid.NewString()
	}
	return nil
}
