package repositories

import (
	"sort"
	"sync"
	"time"

	"bankcards/internal/models"

	"github.com/google/uuid"
)

// memoryCardRepository is an in-memory CardRepository with the same locking
// and transaction semantics as the Postgres implementation: exclusive
// per-card locks held until commit or rollback, bounded lock waits, and
// all-or-nothing visibility of writes. Used by tests and local tooling.
type memoryCardRepository struct {
	mu          sync.RWMutex
	cards       map[uint]*models.Card
	transfers   map[uint]*models.Transfer
	cardLocks   map[uint]chan struct{}
	nextCard    uint
	nextXfer    uint
	lockTimeout time.Duration
}

// memoryCardTx is the view of the repository inside one transaction. Writes
// are staged and only applied on commit.
type memoryCardTx struct {
	repo            *memoryCardRepository
	heldLocks       []uint
	stagedCards     map[uint]*models.Card
	stagedDeletes   map[uint]bool
	stagedTransfers []*models.Transfer
}

// NewMemoryCardRepository creates an in-memory card repository. lockTimeout
// bounds row-lock waits the same way lock_timeout does in Postgres; zero
// means wait forever.
func NewMemoryCardRepository(lockTimeout time.Duration) CardRepository {
	return &memoryCardRepository{
		cards:       make(map[uint]*models.Card),
		transfers:   make(map[uint]*models.Transfer),
		cardLocks:   make(map[uint]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

func copyCard(c *models.Card) *models.Card {
	dup := *c
	return &dup
}

func (r *memoryCardRepository) Create(card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.cards {
		if existing.EncryptedNumber == card.EncryptedNumber {
			return ErrDuplicateCard
		}
	}

	r.nextCard++
	card.ID = r.nextCard
	card.CreatedAt = time.Now()
	card.UpdatedAt = card.CreatedAt
	r.cards[card.ID] = copyCard(card)
	r.cardLocks[card.ID] = make(chan struct{}, 1)
	return nil
}

func (r *memoryCardRepository) GetByID(id uint) (*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cards[id]
	if !ok {
		return nil, ErrCardNotFound
	}
	return copyCard(c), nil
}

func (r *memoryCardRepository) GetByIDForUpdate(id uint) (*models.Card, error) {
	return nil, ErrNotInTransaction
}

func (r *memoryCardRepository) GetByUserID(userID uint) ([]*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cards []*models.Card
	for _, c := range r.cards {
		if c.UserID == userID {
			cards = append(cards, copyCard(c))
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

func (r *memoryCardRepository) GetAll(limit, offset int) ([]*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var cards []*models.Card
	for _, c := range r.cards {
		cards = append(cards, copyCard(c))
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })

	if offset >= len(cards) {
		return nil, nil
	}
	cards = cards[offset:]
	if limit > 0 && limit < len(cards) {
		cards = cards[:limit]
	}
	return cards, nil
}

func (r *memoryCardRepository) Update(card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[card.ID]; !ok {
		return ErrCardNotFound
	}
	card.UpdatedAt = time.Now()
	r.cards[card.ID] = copyCard(card)
	return nil
}

func (r *memoryCardRepository) Delete(card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[card.ID]; !ok {
		return ErrCardNotFound
	}
	delete(r.cards, card.ID)
	delete(r.cardLocks, card.ID)
	return nil
}

func (r *memoryCardRepository) ListAllEncryptedNumbers() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	numbers := make([]string, 0, len(r.cards))
	for _, c := range r.cards {
		numbers = append(numbers, c.EncryptedNumber)
	}
	return numbers, nil
}

func (r *memoryCardRepository) CreateTransfer(transfer *models.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createTransferLocked(transfer)
	return nil
}

func (r *memoryCardRepository) createTransferLocked(transfer *models.Transfer) {
	r.nextXfer++
	transfer.ID = r.nextXfer
	transfer.CreatedAt = time.Now()
	if transfer.Reference == "" {
		transfer.Reference = uuid.NewString()
	}
	if transfer.Status == "" {
		transfer.Status = models.TransferStatusSuccess
	}
	dup := *transfer
	r.transfers[transfer.ID] = &dup
}

func (r *memoryCardRepository) CountTransfersByCard(cardID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, t := range r.transfers {
		if t.FromCardID == cardID || t.ToCardID == cardID {
			count++
		}
	}
	return count, nil
}

func (r *memoryCardRepository) ListTransfersByCard(cardID uint, limit, offset int) ([]*models.Transfer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var transfers []*models.Transfer
	for _, t := range r.transfers {
		if t.FromCardID == cardID || t.ToCardID == cardID {
			dup := *t
			transfers = append(transfers, &dup)
		}
	}
	sort.Slice(transfers, func(i, j int) bool {
		return transfers[i].CreatedAt.After(transfers[j].CreatedAt)
	})

	if offset >= len(transfers) {
		return nil, nil
	}
	transfers = transfers[offset:]
	if limit > 0 && limit < len(transfers) {
		transfers = transfers[:limit]
	}
	return transfers, nil
}

func (r *memoryCardRepository) ExecuteInTransaction(fn func(tx CardRepository) error) error {
	tx := &memoryCardTx{
		repo:          r,
		stagedCards:   make(map[uint]*models.Card),
		stagedDeletes: make(map[uint]bool),
	}
	defer tx.releaseLocks()

	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (tx *memoryCardTx) commit() {
	r := tx.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range tx.stagedCards {
		c.UpdatedAt = time.Now()
		r.cards[id] = c
	}
	for id := range tx.stagedDeletes {
		delete(r.cards, id)
		delete(r.cardLocks, id)
	}
	for _, t := range tx.stagedTransfers {
		r.createTransferLocked(t)
	}
}

func (tx *memoryCardTx) releaseLocks() {
	r := tx.repo
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range tx.heldLocks {
		if lock, ok := r.cardLocks[id]; ok {
			<-lock
		}
	}
	tx.heldLocks = nil
}

func (tx *memoryCardTx) GetByIDForUpdate(id uint) (*models.Card, error) {
	r := tx.repo

	r.mu.RLock()
	lock, ok := r.cardLocks[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrCardNotFound
	}

	if r.lockTimeout > 0 {
		timer := time.NewTimer(r.lockTimeout)
		defer timer.Stop()
		select {
		case lock <- struct{}{}:
		case <-timer.C:
			return nil, ErrLockTimeout
		}
	} else {
		lock <- struct{}{}
	}
	tx.heldLocks = append(tx.heldLocks, id)

	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cards[id]
	if !ok {
		return nil, ErrCardNotFound
	}
	return copyCard(c), nil
}

func (tx *memoryCardTx) GetByID(id uint) (*models.Card, error) {
	if staged, ok := tx.stagedCards[id]; ok {
		return copyCard(staged), nil
	}
	return tx.repo.GetByID(id)
}

func (tx *memoryCardTx) Create(card *models.Card) error {
	return tx.repo.Create(card)
}

func (tx *memoryCardTx) GetByUserID(userID uint) ([]*models.Card, error) {
	return tx.repo.GetByUserID(userID)
}

func (tx *memoryCardTx) GetAll(limit, offset int) ([]*models.Card, error) {
	return tx.repo.GetAll(limit, offset)
}

func (tx *memoryCardTx) Update(card *models.Card) error {
	tx.stagedCards[card.ID] = copyCard(card)
	return nil
}

func (tx *memoryCardTx) Delete(card *models.Card) error {
	tx.stagedDeletes[card.ID] = true
	return nil
}

func (tx *memoryCardTx) ListAllEncryptedNumbers() ([]string, error) {
	return tx.repo.ListAllEncryptedNumbers()
}

func (tx *memoryCardTx) CreateTransfer(transfer *models.Transfer) error {
	tx.stagedTransfers = append(tx.stagedTransfers, transfer)
	return nil
}

func (tx *memoryCardTx) CountTransfersByCard(cardID uint) (int64, error) {
	return tx.repo.CountTransfersByCard(cardID)
}

func (tx *memoryCardTx) ListTransfersByCard(cardID uint, limit, offset int) ([]*models.Transfer, error) {
	return tx.repo.ListTransfersByCard(cardID, limit, offset)
}

func (tx *memoryCardTx) ExecuteInTransaction(fn func(CardRepository) error) error {
	return fn(tx)
}
