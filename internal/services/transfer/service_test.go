package transfer

import (
	"context"
	"sync"
	"testing"
	"time"

	"bankcards/internal/models"
	"bankcards/internal/repositories"
	"bankcards/internal/services/card"
	"bankcards/internal/services/vault"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	cards   repositories.CardRepository
	vault   vault.Service
	service Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	vaultSvc, err := vault.NewService("test-secret")
	require.NoError(t, err)

	// Generous enough that contention never trips it; a real deadlock
	// still fails the test instead of hanging it.
	cards := repositories.NewMemoryCardRepository(2 * time.Second)
	return &fixture{
		cards:   cards,
		vault:   vaultSvc,
		service: NewService(cards, vaultSvc),
	}
}

func (f *fixture) seedCard(t *testing.T, userID uint, balance string) *models.Card {
	t.Helper()

	number, err := f.vault.Generate(f.cards)
	require.NoError(t, err)
	encrypted, err := f.vault.Encrypt(number)
	require.NoError(t, err)

	c := &models.Card{
		EncryptedNumber: encrypted,
		UserID:          userID,
		Status:          models.CardStatusActive,
		Balance:         decimal.RequireFromString(balance),
		ExpiryDate:      time.Now().AddDate(models.CardValidityYears, 0, 0),
	}
	require.NoError(t, f.cards.Create(c))
	return c
}

func (f *fixture) balance(t *testing.T, cardID uint) decimal.Decimal {
	t.Helper()
	c, err := f.cards.GetByID(cardID)
	require.NoError(t, err)
	return c.Balance
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	from := f.seedCard(t, 1, "100.00")
	to := f.seedCard(t, 1, "50.00")

	view, err := f.service.Transfer(context.Background(), 1, from.ID, to.ID, decimal.RequireFromString("30.00"))
	require.NoError(t, err)

	assert.Equal(t, models.TransferStatusSuccess, view.Status)
	assert.NotEmpty(t, view.Reference)
	assert.True(t, view.Amount.Equal(decimal.RequireFromString("30.00")))
	assert.Regexp(t, `^\*\*\*\* \*\*\*\* \*\*\*\* \d{4}$`, view.FromMaskedNumber)
	assert.Regexp(t, `^\*\*\*\* \*\*\*\* \*\*\*\* \d{4}$`, view.ToMaskedNumber)

	assert.True(t, f.balance(t, from.ID).Equal(decimal.RequireFromString("70.00")))
	assert.True(t, f.balance(t, to.ID).Equal(decimal.RequireFromString("80.00")))

	records, err := f.cards.ListTransfersByCard(from.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, from.ID, records[0].FromCardID)
	assert.Equal(t, to.ID, records[0].ToCardID)
}

func TestTransfer_InvalidAmount(t *testing.T) {
	f := newFixture(t)
	from := f.seedCard(t, 1, "100.00")
	to := f.seedCard(t, 1, "0.00")

	for _, amount := range []string{"0", "-5.00"} {
		_, err := f.service.Transfer(context.Background(), 1, from.ID, to.ID, decimal.RequireFromString(amount))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.True(t, f.balance(t, from.ID).Equal(decimal.RequireFromString("100.00")))
}

func TestTransfer_SameCard(t *testing.T) {
	f := newFixture(t)
	c := f.seedCard(t, 1, "100.00")

	_, err := f.service.Transfer(context.Background(), 1, c.ID, c.ID, decimal.RequireFromString("10.00"))
	assert.ErrorIs(t, err, ErrSameCard)
}

func TestTransfer_CardNotFound(t *testing.T) {
	f := newFixture(t)
	c := f.seedCard(t, 1, "100.00")

	_, err := f.service.Transfer(context.Background(), 1, c.ID, 999, decimal.RequireFromString("10.00"))
	assert.ErrorIs(t, err, card.ErrCardNotFound)

	_, err = f.service.Transfer(context.Background(), 1, 999, c.ID, decimal.RequireFromString("10.00"))
	assert.ErrorIs(t, err, card.ErrCardNotFound)
}

func TestTransfer_ForeignCard(t *testing.T) {
	f := newFixture(t)
	mine := f.seedCard(t, 1, "100.00")
	theirs := f.seedCard(t, 2, "100.00")

	_, err := f.service.Transfer(context.Background(), 1, theirs.ID, mine.ID, decimal.RequireFromString("10.00"))
	assert.ErrorIs(t, err, ErrForeignCard)
	assert.ErrorIs(t, err, card.ErrSecurityViolation)

	_, err = f.service.Transfer(context.Background(), 1, mine.ID, theirs.ID, decimal.RequireFromString("10.00"))
	assert.ErrorIs(t, err, ErrForeignCard)

	assert.True(t, f.balance(t, mine.ID).Equal(decimal.RequireFromString("100.00")))
	assert.True(t, f.balance(t, theirs.ID).Equal(decimal.RequireFromString("100.00")))
}

func TestTransfer_CardNotActive(t *testing.T) {
	f := newFixture(t)
	from := f.seedCard(t, 1, "100.00")
	to := f.seedCard(t, 1, "100.00")

	for _, status := range []models.CardStatus{
		models.CardStatusBlockRequested,
		models.CardStatusBlocked,
		models.CardStatusExpired,
	} {
		c, err := f.cards.GetByID(to.ID)
		require.NoError(t, err)
		c.Status = status
		require.NoError(t, f.cards.Update(c))

		_, err = f.service.Transfer(context.Background(), 1, from.ID, to.ID, decimal.RequireFromString("10.00"))
		var notActive *card.NotActiveError
		require.ErrorAs(t, err, &notActive)
		assert.Equal(t, to.ID, notActive.CardID)
	}

	assert.True(t, f.balance(t, from.ID).Equal(decimal.RequireFromString("100.00")))
	assert.True(t, f.balance(t, to.ID).Equal(decimal.RequireFromString("100.00")))
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	from := f.seedCard(t, 1, "25.00")
	to := f.seedCard(t, 1, "0.00")

	_, err := f.service.Transfer(context.Background(), 1, from.ID, to.ID, decimal.RequireFromString("25.01"))
	var insufficient *InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, from.ID, insufficient.CardID)

	// Both balances untouched, no audit record written.
	assert.True(t, f.balance(t, from.ID).Equal(decimal.RequireFromString("25.00")))
	assert.True(t, f.balance(t, to.ID).Equal(decimal.RequireFromString("0.00")))
	count, err := f.cards.CountTransfersByCard(from.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransfer_ExactBalance(t *testing.T) {
	f := newFixture(t)
	from := f.seedCard(t, 1, "25.00")
	to := f.seedCard(t, 1, "0.00")

	_, err := f.service.Transfer(context.Background(), 1, from.ID, to.ID, decimal.RequireFromString("25.00"))
	require.NoError(t, err)

	assert.True(t, f.balance(t, from.ID).IsZero())
	assert.True(t, f.balance(t, to.ID).Equal(decimal.RequireFromString("25.00")))
}

// Opposing transfers between the same pair of cards must both complete
// without deadlocking, and the combined balance must be conserved.
func TestTransfer_OpposingConcurrent(t *testing.T) {
	f := newFixture(t)
	a := f.seedCard(t, 1, "100.00")
	b := f.seedCard(t, 1, "100.00")

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.service.Transfer(context.Background(), 1, a.ID, b.ID, decimal.RequireFromString("50.00"))
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.service.Transfer(context.Background(), 1, b.ID, a.ID, decimal.RequireFromString("30.00"))
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	assert.True(t, f.balance(t, a.ID).Equal(decimal.RequireFromString("80.00")))
	assert.True(t, f.balance(t, b.ID).Equal(decimal.RequireFromString("120.00")))

	count, err := f.cards.CountTransfersByCard(a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

// Many concurrent transfers over a shared set of cards: every successful
// transfer moves money, every failed one leaves balances alone, and the
// total is conserved either way.
func TestTransfer_ConcurrentConservation(t *testing.T) {
	f := newFixture(t)

	cards := make([]*models.Card, 4)
	for i := range cards {
		cards[i] = f.seedCard(t, 1, "100.00")
	}

	const rounds = 20
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		from := cards[i%len(cards)]
		to := cards[(i+1)%len(cards)]
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Insufficient funds is a legitimate outcome under contention.
			_, err := f.service.Transfer(context.Background(), 1, from.ID, to.ID, decimal.RequireFromString("15.00"))
			if err != nil {
				var insufficient *InsufficientFundsError
				assert.ErrorAs(t, err, &insufficient)
			}
		}()
	}
	wg.Wait()

	total := decimal.Zero
	for _, c := range cards {
		balance := f.balance(t, c.ID)
		assert.True(t, balance.Sign() >= 0, "card %d went negative: %s", c.ID, balance)
		total = total.Add(balance)
	}
	assert.True(t, total.Equal(decimal.RequireFromString("400.00")), "total drifted to %s", total)
}
