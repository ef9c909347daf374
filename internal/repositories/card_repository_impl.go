package repositories

import (
	"errors"
	"fmt"
	"time"

	"bankcards/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pgLockNotAvailable is the SQLSTATE Postgres reports when a statement gives
// up waiting because of lock_timeout.
const pgLockNotAvailable = "55P03"

type cardRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
	inTx        bool
}

// NewCardRepository creates a card repository. lockTimeout bounds how long a
// row-lock acquisition may wait inside ExecuteInTransaction.
func NewCardRepository(db *gorm.DB, lockTimeout time.Duration) CardRepository {
	return &cardRepository{db: db, lockTimeout: lockTimeout}
}

func (r *cardRepository) Create(card *models.Card) error {
	if err := r.db.Create(card).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCard
		}
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (r *cardRepository) GetByID(id uint) (*models.Card, error) {
	var card models.Card
	if err := r.db.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return &card, nil
}

func (r *cardRepository) GetByIDForUpdate(id uint) (*models.Card, error) {
	if !r.inTx {
		return nil, ErrNotInTransaction
	}
	var card models.Card
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&card, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		if isLockTimeout(err) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("failed to lock card: %w", err)
	}
	return &card, nil
}

func (r *cardRepository) GetByUserID(userID uint) ([]*models.Card, error) {
	var cards []*models.Card
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to get user cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepository) GetAll(limit, offset int) ([]*models.Card, error) {
	var cards []*models.Card
	if err := r.db.Order("id").Limit(limit).Offset(offset).Find(&cards).Error; err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepository) Update(card *models.Card) error {
	if err := r.db.Save(card).Error; err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

func (r *cardRepository) Delete(card *models.Card) error {
	result := r.db.Delete(card)
	if result.Error != nil {
		return fmt.Errorf("failed to delete card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (r *cardRepository) ListAllEncryptedNumbers() ([]string, error) {
	var numbers []string
	err := r.db.Model(&models.Card{}).Pluck("encrypted_number", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list encrypted numbers: %w", err)
	}
	return numbers, nil
}

func (r *cardRepository) CreateTransfer(transfer *models.Transfer) error {
	if err := r.db.Create(transfer).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (r *cardRepository) CountTransfersByCard(cardID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transfer{}).
		Where("from_card_id = ? OR to_card_id = ?", cardID, cardID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	return count, nil
}

func (r *cardRepository) ListTransfersByCard(cardID uint, limit, offset int) ([]*models.Transfer, error) {
	var transfers []*models.Transfer
	err := r.db.
		Where("from_card_id = ? OR to_card_id = ?", cardID, cardID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}

func (r *cardRepository) ExecuteInTransaction(fn func(tx CardRepository) error) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if r.lockTimeout > 0 {
			timeout := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(timeout).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		txRepo := &cardRepository{db: tx, lockTimeout: r.lockTimeout, inTx: true}
		return fn(txRepo)
	})
	if err != nil && isLockTimeout(err) {
		return ErrLockTimeout
	}
	return err
}

func isLockTimeout(err error) bool {
	if errors.Is(err, ErrLockTimeout) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable
}
