package repositories

import (
	"errors"

	"bankcards/internal/models"
)

var (
	ErrCardNotFound     = errors.New("card not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateCard    = errors.New("card number already exists")
	ErrLockTimeout      = errors.New("timed out waiting for card row lock")
	ErrNotInTransaction = errors.New("operation requires a transaction")
)

// CardRepository defines the interface for card-related database operations.
// Transfers are created through the same repository so that balance updates
// and the audit record share one transaction boundary.
type CardRepository interface {
	// Card operations
	Create(card *models.Card) error
	GetByID(id uint) (*models.Card, error)
	GetByUserID(userID uint) ([]*models.Card, error)
	GetAll(limit, offset int) ([]*models.Card, error)
	Update(card *models.Card) error
	Delete(card *models.Card) error

	// GetByIDForUpdate fetches a card holding an exclusive row lock until the
	// surrounding transaction commits or rolls back. Only valid inside
	// ExecuteInTransaction.
	GetByIDForUpdate(id uint) (*models.Card, error)

	// ListAllEncryptedNumbers returns every stored ciphertext, used for
	// uniqueness checks when generating new card numbers.
	ListAllEncryptedNumbers() ([]string, error)

	// Transfer operations
	CreateTransfer(transfer *models.Transfer) error
	CountTransfersByCard(cardID uint) (int64, error)
	ListTransfersByCard(cardID uint, limit, offset int) ([]*models.Transfer, error)

	// ExecuteInTransaction runs fn inside one atomic unit of work. Row locks
	// taken by the callback are released on commit or rollback, and lock
	// waits are bounded by the configured lock timeout.
	ExecuteInTransaction(fn func(tx CardRepository) error) error
}
