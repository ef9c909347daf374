package repositories

import (
	"errors"
	"testing"
	"time"

	"bankcards/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCard(t *testing.T, repo CardRepository, userID uint, balance string) *models.Card {
	t.Helper()
	c := &models.Card{
		EncryptedNumber: "enc-" + balance + "-" + time.Now().String(),
		UserID:          userID,
		Status:          models.CardStatusActive,
		Balance:         decimal.RequireFromString(balance),
		ExpiryDate:      time.Now().AddDate(models.CardValidityYears, 0, 0),
	}
	require.NoError(t, repo.Create(c))
	return c
}

func TestMemoryRepo_GetByIDForUpdateOutsideTransaction(t *testing.T) {
	repo := NewMemoryCardRepository(0)
	c := seedCard(t, repo, 1, "10.00")

	_, err := repo.GetByIDForUpdate(c.ID)
	assert.ErrorIs(t, err, ErrNotInTransaction)
}

func TestMemoryRepo_LockTimeout(t *testing.T) {
	repo := NewMemoryCardRepository(50 * time.Millisecond)
	c := seedCard(t, repo, 1, "10.00")

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- repo.ExecuteInTransaction(func(tx CardRepository) error {
			if _, err := tx.GetByIDForUpdate(c.ID); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	err := repo.ExecuteInTransaction(func(tx CardRepository) error {
		_, err := tx.GetByIDForUpdate(c.ID)
		return err
	})
	assert.ErrorIs(t, err, ErrLockTimeout)

	close(release)
	require.NoError(t, <-done)
}

func TestMemoryRepo_LockReleasedAfterCommit(t *testing.T) {
	repo := NewMemoryCardRepository(50 * time.Millisecond)
	c := seedCard(t, repo, 1, "10.00")

	for i := 0; i < 3; i++ {
		err := repo.ExecuteInTransaction(func(tx CardRepository) error {
			locked, err := tx.GetByIDForUpdate(c.ID)
			if err != nil {
				return err
			}
			locked.Balance = locked.Balance.Add(decimal.RequireFromString("1.00"))
			return tx.Update(locked)
		})
		require.NoError(t, err)
	}

	got, err := repo.GetByID(c.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("13.00")))
}

func TestMemoryRepo_RollbackDiscardsStagedWrites(t *testing.T) {
	repo := NewMemoryCardRepository(0)
	c := seedCard(t, repo, 1, "10.00")

	boom := errors.New("boom")
	err := repo.ExecuteInTransaction(func(tx CardRepository) error {
		locked, err := tx.GetByIDForUpdate(c.ID)
		if err != nil {
			return err
		}
		locked.Balance = decimal.Zero
		if err := tx.Update(locked); err != nil {
			return err
		}
		if err := tx.CreateTransfer(&models.Transfer{
			FromCardID: c.ID,
			ToCardID:   c.ID,
			Amount:     decimal.RequireFromString("10.00"),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetByID(c.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("10.00")))

	count, err := repo.CountTransfersByCard(c.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryRepo_TransferRecords(t *testing.T) {
	repo := NewMemoryCardRepository(0)
	a := seedCard(t, repo, 1, "10.00")
	b := seedCard(t, repo, 1, "20.00")

	xfer := &models.Transfer{
		FromCardID: a.ID,
		ToCardID:   b.ID,
		Amount:     decimal.RequireFromString("5.00"),
	}
	require.NoError(t, repo.CreateTransfer(xfer))
	assert.NotZero(t, xfer.ID)
	assert.NotEmpty(t, xfer.Reference)
	assert.Equal(t, models.TransferStatusSuccess, xfer.Status)

	// Both sides of a transfer see it in their history.
	for _, id := range []uint{a.ID, b.ID} {
		count, err := repo.CountTransfersByCard(id)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)

		records, err := repo.ListTransfersByCard(id, 10, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, xfer.Reference, records[0].Reference)
	}
}

func TestMemoryRepo_DuplicateEncryptedNumber(t *testing.T) {
	repo := NewMemoryCardRepository(0)
	c := seedCard(t, repo, 1, "0.00")

	err := repo.Create(&models.Card{
		EncryptedNumber: c.EncryptedNumber,
		UserID:          2,
		Status:          models.CardStatusActive,
		Balance:         decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrDuplicateCard)
}
