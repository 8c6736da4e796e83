package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/domain"
	"evea/internal/repository"
)

type Service struct {
	items *repository.CartRepository
	cards *repository.VendorCardRepository
	log   *zap.Logger
	now   func() time.Time
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		items: repository.NewCartRepository(db),
		cards: repository.NewVendorCardRepository(db),
		log:   log,
		now:   time.Now,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (*View, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newView(items), nil
}

// Add puts a published card in the cart. Adding a card that is already there
// increases its quantity.
func (s *Service) Add(ctx context.Context, userID int64, req AddItemRequest) (*domain.CartItem, error) {
	card, err := s.cards.GetPublished(ctx, req.VendorCardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	item := &domain.CartItem{
		UserID:       userID,
		VendorCardID: card.ID,
		Quantity:     req.Quantity,
		Notes:        strings.TrimSpace(req.Notes),
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if req.EventDate != "" {
		d, err := time.Parse(time.DateOnly, req.EventDate)
		if err != nil {
			return nil, err
		}
		today := s.now().UTC().Truncate(24 * time.Hour)
		if d.Before(today) {
			return nil, ErrEventDateInPast
		}
		item.EventDate = &d
	}

	if err := s.items.Add(ctx, item); err != nil {
		return nil, err
	}
	if item.Quantity > maxQuantity {
		if err := s.items.UpdateQuantity(ctx, userID, item.ID, maxQuantity); err != nil {
			return nil, err
		}
		item.Quantity = maxQuantity
	}
	item.VendorCard = card
	return item, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) (*domain.CartItem, error) {
	if qty > maxQuantity {
		return nil, ErrQuantityTooLarge
	}
	if err := s.items.UpdateQuantity(ctx, userID, itemID, qty); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return s.items.GetForUser(ctx, userID, itemID)
}

func (s *Service) Remove(ctx context.Context, userID, itemID int64) error {
	if err := s.items.Delete(ctx, userID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.items.Clear(ctx, userID)
}
