// Package transfer implements the funds-transfer engine. Concurrent
// transfers sharing a card serialize on exclusive row locks acquired in
// ascending card-id order, which rules out deadlock between opposing
// transfers.
package transfer

import (
	"context"
	"errors"

	"bankcards/internal/models"
	"bankcards/internal/repositories"
	"bankcards/internal/services/card"
	"bankcards/internal/services/vault"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type service struct {
	cards repositories.CardRepository
	vault vault.Service
}

// NewService creates the transfer engine.
func NewService(cards repositories.CardRepository, vaultSvc vault.Service) Service {
	if cards == nil {
		panic("card repository is required")
	}
	if vaultSvc == nil {
		panic("vault service is required")
	}
	return &service{cards: cards, vault: vaultSvc}
}

func (s *service) Transfer(ctx context.Context, requesterID, fromCardID, toCardID uint, amount decimal.Decimal) (*View, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromCardID == toCardID {
		return nil, ErrSameCard
	}

	var record *models.Transfer
	var fromCard, toCard *models.Card

	err := s.cards.ExecuteInTransaction(func(tx repositories.CardRepository) error {
		var err error
		fromCard, toCard, err = lockBoth(tx, fromCardID, toCardID)
		if err != nil {
			return err
		}

		// State may have changed while waiting for the locks, so every
		// guard runs against the locked rows.
		if fromCard.UserID != requesterID {
			logrus.WithFields(logrus.Fields{
				"requester_id": requesterID,
				"card_id":      fromCard.ID,
				"owner_id":     fromCard.UserID,
			}).Warn("transfer attempted from another user's card")
			return ErrForeignCard
		}
		if toCard.UserID != requesterID {
			logrus.WithFields(logrus.Fields{
				"requester_id": requesterID,
				"card_id":      toCard.ID,
				"owner_id":     toCard.UserID,
			}).Warn("transfer attempted to another user's card")
			return ErrForeignCard
		}
		if err := card.EnsureActive(fromCard); err != nil {
			return err
		}
		if err := card.EnsureActive(toCard); err != nil {
			return err
		}
		if fromCard.Balance.LessThan(amount) {
			return &InsufficientFundsError{CardID: fromCard.ID}
		}

		fromCard.Balance = fromCard.Balance.Sub(amount)
		toCard.Balance = toCard.Balance.Add(amount)

		if err := tx.Update(fromCard); err != nil {
			return err
		}
		if err := tx.Update(toCard); err != nil {
			return err
		}

		record = &models.Transfer{
			FromCardID: fromCard.ID,
			ToCardID:   toCard.ID,
			Amount:     amount,
			Status:     models.TransferStatusSuccess,
		}
		return tx.CreateTransfer(record)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"transfer_id": record.ID,
		"user_id":     requesterID,
		"from_card":   fromCard.ID,
		"to_card":     toCard.ID,
		"amount":      amount.StringFixed(2),
	}).Info("transfer completed")

	return s.toView(record, fromCard, toCard)
}

// lockBoth acquires exclusive locks on both cards, smaller id first. Every
// caller uses the same order regardless of transfer direction, so two
// opposing transfers can never hold one lock each while waiting for the
// other.
func lockBoth(tx repositories.CardRepository, fromCardID, toCardID uint) (*models.Card, *models.Card, error) {
	lockOrder := []uint{fromCardID, toCardID}
	if toCardID < fromCardID {
		lockOrder[0], lockOrder[1] = toCardID, fromCardID
	}

	locked := make(map[uint]*models.Card, 2)
	for _, id := range lockOrder {
		c, err := tx.GetByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, repositories.ErrCardNotFound) {
				return nil, nil, card.ErrCardNotFound
			}
			return nil, nil, err
		}
		locked[id] = c
	}

	return locked[fromCardID], locked[toCardID], nil
}

func (s *service) toView(record *models.Transfer, fromCard, toCard *models.Card) (*View, error) {
	fromNumber, err := s.vault.Decrypt(fromCard.EncryptedNumber)
	if err != nil {
		return nil, err
	}
	toNumber, err := s.vault.Decrypt(toCard.EncryptedNumber)
	if err != nil {
		return nil, err
	}

	return &View{
		ID:               record.ID,
		Reference:        record.Reference,
		FromMaskedNumber: s.vault.Mask(fromNumber),
		ToMaskedNumber:   s.vault.Mask(toNumber),
		Amount:           record.Amount,
		Status:           record.Status,
		CreatedAt:        record.CreatedAt,
	}, nil
}
