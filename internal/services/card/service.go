package card

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bankcards/internal/models"
	"bankcards/internal/repositories"
	"bankcards/internal/repositories/cache"
	"bankcards/internal/services/vault"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type service struct {
	cards repositories.CardRepository
	users repositories.UserRepository
	vault vault.Service
	cache *cache.CacheService
}

// NewService creates the card lifecycle service. cacheSvc may be nil to run
// without caching.
func NewService(
	cards repositories.CardRepository,
	users repositories.UserRepository,
	vaultSvc vault.Service,
	cacheSvc *cache.CacheService,
) Service {
	if cards == nil {
		panic("card repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	if vaultSvc == nil {
		panic("vault service is required")
	}
	return &service{
		cards: cards,
		users: users,
		vault: vaultSvc,
		cache: cacheSvc,
	}
}

func (s *service) CreateCard(ctx context.Context, userID uint) (*View, error) {
	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	number, err := s.vault.Generate(s.cards)
	if err != nil {
		return nil, err
	}
	encrypted, err := s.vault.Encrypt(number)
	if err != nil {
		return nil, err
	}

	c := &models.Card{
		EncryptedNumber: encrypted,
		UserID:          userID,
		Status:          models.CardStatusActive,
		Balance:         decimal.Zero,
		ExpiryDate:      time.Now().AddDate(models.CardValidityYears, 0, 0),
	}
	if err := s.cards.Create(c); err != nil {
		return nil, err
	}

	s.invalidateUserCards(ctx, userID)
	logrus.WithFields(logrus.Fields{"card_id": c.ID, "user_id": userID}).Info("card created")
	return s.toView(c, number), nil
}

func (s *service) RequestBlock(ctx context.Context, requesterID, cardID uint) (*View, error) {
	c, err := s.getCard(cardID)
	if err != nil {
		return nil, err
	}

	if c.UserID != requesterID {
		logrus.WithFields(logrus.Fields{
			"requester_id": requesterID,
			"card_id":      cardID,
			"owner_id":     c.UserID,
		}).Warn("block requested on another user's card")
		return nil, ErrNotCardOwner
	}
	if c.Status == models.CardStatusBlocked {
		return nil, ErrCardAlreadyBlocked
	}

	c.Status = models.CardStatusBlockRequested
	return s.saveAndView(ctx, c)
}

func (s *service) ConfirmBlock(ctx context.Context, cardID uint) (*View, error) {
	c, err := s.getCard(cardID)
	if err != nil {
		return nil, err
	}

	c.Status = models.CardStatusBlocked
	return s.saveAndView(ctx, c)
}

func (s *service) RejectBlock(ctx context.Context, cardID uint) (*View, error) {
	c, err := s.getCard(cardID)
	if err != nil {
		return nil, err
	}

	c.Status = models.CardStatusActive
	return s.saveAndView(ctx, c)
}

func (s *service) Activate(ctx context.Context, cardID uint) (*View, error) {
	c, err := s.getCard(cardID)
	if err != nil {
		return nil, err
	}

	if c.Status == models.CardStatusActive {
		return nil, ErrCardAlreadyActive
	}

	c.Status = models.CardStatusActive
	return s.saveAndView(ctx, c)
}

func (s *service) Delete(ctx context.Context, cardID uint) error {
	c, err := s.getCard(cardID)
	if err != nil {
		return err
	}

	if c.Balance.Sign() != 0 {
		return ErrNonZeroBalance
	}
	count, err := s.cards.CountTransfersByCard(cardID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrHasTransferHistory
	}

	if err := s.cards.Delete(c); err != nil {
		return err
	}

	s.invalidateUserCards(ctx, c.UserID)
	logrus.WithFields(logrus.Fields{"card_id": cardID, "user_id": c.UserID}).Info("card deleted")
	return nil
}

func (s *service) GetCard(ctx context.Context, requesterID, cardID uint) (*View, error) {
	c, err := s.getCard(cardID)
	if err != nil {
		return nil, err
	}
	if c.UserID != requesterID {
		return nil, ErrNotCardOwner
	}

	number, err := s.vault.Decrypt(c.EncryptedNumber)
	if err != nil {
		return nil, err
	}
	return s.toView(c, number), nil
}

func (s *service) GetBalance(ctx context.Context, requesterID, cardID uint) (decimal.Decimal, error) {
	c, err := s.getCard(cardID)
	if err != nil {
		return decimal.Zero, err
	}
	if c.UserID != requesterID {
		return decimal.Zero, ErrNotCardOwner
	}
	return c.Balance, nil
}

func (s *service) ListUserCards(ctx context.Context, userID uint) ([]*View, error) {
	if s.cache != nil {
		var cached []*View
		if found, err := s.cache.Get(ctx, cache.UserCardsKey(userID), &cached); err == nil && found {
			return cached, nil
		}
	}

	cards, err := s.cards.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	views, err := s.toViews(cards)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.UserCardsKey(userID), views); err != nil {
			logrus.Warnf("failed to cache user cards: %v", err)
		}
	}
	return views, nil
}

func (s *service) ListAllCards(ctx context.Context, limit, offset int) ([]*View, error) {
	cards, err := s.cards.GetAll(limit, offset)
	if err != nil {
		return nil, err
	}
	return s.toViews(cards)
}

func (s *service) getCard(cardID uint) (*models.Card, error) {
	c, err := s.cards.GetByID(cardID)
	if err != nil {
		if errors.Is(err, repositories.ErrCardNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *service) saveAndView(ctx context.Context, c *models.Card) (*View, error) {
	if err := s.cards.Update(c); err != nil {
		return nil, err
	}
	s.invalidateUserCards(ctx, c.UserID)

	number, err := s.vault.Decrypt(c.EncryptedNumber)
	if err != nil {
		return nil, err
	}
	return s.toView(c, number), nil
}

func (s *service) toViews(cards []*models.Card) ([]*View, error) {
	views := make([]*View, 0, len(cards))
	for _, c := range cards {
		number, err := s.vault.Decrypt(c.EncryptedNumber)
		if err != nil {
			return nil, err
		}
		views = append(views, s.toView(c, number))
	}
	return views, nil
}

func (s *service) toView(c *models.Card, plainNumber string) *View {
	return &View{
		ID:           c.ID,
		MaskedNumber: s.vault.Mask(plainNumber),
		UserID:       c.UserID,
		Status:       string(c.Status),
		Balance:      c.Balance,
		ExpiryDate:   c.ExpiryDate,
	}
}

func (s *service) invalidateUserCards(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.UserCardsKey(userID)); err != nil {
		logrus.Warnf("failed to invalidate card cache for user %d: %v", userID, err)
	}
}
