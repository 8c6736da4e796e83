package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/domain"
	"evea/internal/outbox"
	"evea/internal/pkg/utils"
	"evea/internal/repository"
)

type Service struct {
	db      *gorm.DB
	orders  *repository.OrderRepository
	cart    *repository.CartRepository
	vendors *repository.VendorRepository
	log     *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:      db,
		orders:  repository.NewOrderRepository(db),
		cart:    repository.NewCartRepository(db),
		vendors: repository.NewVendorRepository(db),
		log:     log,
	}
}

// Checkout turns every cart item into a pending order priced at the card's
// starting price times quantity, then empties the cart. Nothing is written
// unless every item can be ordered.
func (s *Service) Checkout(ctx context.Context, userID int64, notes string) ([]domain.Order, error) {
	var placed []domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart := s.cart.WithTx(tx)
		orders := s.orders.WithTx(tx)
		vendors := s.vendors.WithTx(tx)

		items, err := cart.ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		vendorUsers := map[int64]int64{}
		for _, it := range items {
			card := it.VendorCard
			if card == nil || !card.IsPublished {
				return fmt.Errorf("%w: cart item %d", ErrCardUnavailable, it.ID)
			}

			o := domain.Order{
				UserID:       userID,
				VendorID:     card.VendorID,
				VendorCardID: card.ID,
				Quantity:     it.Quantity,
				EventDate:    it.EventDate,
				Amount:       card.PriceFrom.Mul(decimal.NewFromInt(int64(it.Quantity))),
				Status:       domain.OrderPending,
				Notes:        joinNotes(it.Notes, notes),
			}
			if err := orders.Create(ctx, &o); err != nil {
				return err
			}

			vendorUser, ok := vendorUsers[card.VendorID]
			if !ok {
				v, err := vendors.GetByID(ctx, card.VendorID)
				if err != nil {
					return err
				}
				vendorUser = v.UserID
				vendorUsers[card.VendorID] = vendorUser
			}
			if _, err := outbox.Enqueue(tx, outbox.TopicOrderPlaced, orderEvent(&o, card, userID, vendorUser)); err != nil {
				return err
			}

			o.VendorCard = card
			placed = append(placed, o)
		}
		return cart.Clear(ctx, userID)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("checkout completed", zap.Int64("user_id", userID), zap.Int("orders", len(placed)))
	return placed, nil
}

func joinNotes(item, order string) string {
	item, order = strings.TrimSpace(item), strings.TrimSpace(order)
	switch {
	case item == "":
		return order
	case order == "":
		return item
	}
	return item + "\n" + order
}

func orderEvent(o *domain.Order, card *domain.VendorCard, customerID, vendorUserID int64) outbox.OrderEvent {
	return outbox.OrderEvent{
		OrderID:      o.ID,
		CustomerID:   customerID,
		VendorID:     o.VendorID,
		VendorUserID: vendorUserID,
		CardTitle:    card.Title,
		Amount:       o.Amount.StringFixed(2),
		Status:       string(o.Status),
	}
}

func (s *Service) ListForCustomer(ctx context.Context, userID int64, page utils.Page) (*OrderList, error) {
	orders, total, err := s.orders.ListByUser(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return newList(orders, total), nil
}

// activeVendor reloads the vendor behind a session. A session outlives a
// suspension, so the desk checks the current status on every call.
func (s *Service) activeVendor(ctx context.Context, vendorID int64) (*domain.Vendor, error) {
	v, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVendorInactive
		}
		return nil, err
	}
	if v.VerificationStatus != domain.VendorApproved {
		return nil, ErrVendorInactive
	}
	return v, nil
}

func (s *Service) ListForVendor(ctx context.Context, vendorID int64, status domain.OrderStatus, page utils.Page) (*OrderList, error) {
	if _, err := s.activeVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	orders, total, err := s.orders.ListByVendor(ctx, vendorID, status, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return newList(orders, total), nil
}

func newList(orders []domain.Order, total int64) *OrderList {
	if orders == nil {
		orders = []domain.Order{}
	}
	return &OrderList{Orders: orders, Total: total}
}

// UpdateStatus moves one of the vendor's orders along
// pending → confirmed → completed, with cancellation allowed before completion.
func (s *Service) UpdateStatus(ctx context.Context, vendorID, orderID int64, next domain.OrderStatus) (*domain.Order, error) {
	vendor, err := s.activeVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if o.VendorID != vendorID {
		return nil, ErrNotFound
	}
	if !o.Status.CanMoveTo(next) {
		return nil, ErrInvalidStatusTransition
	}

	prev := o.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).UpdateStatus(ctx, o.ID, prev, next); err != nil {
			return err
		}
		o.Status = next
		card := o.VendorCard
		if card == nil {
			card = &domain.VendorCard{}
		}
		_, err := outbox.Enqueue(tx, outbox.TopicOrderStatusChanged, orderEvent(o, card, o.UserID, vendor.UserID))
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.log.Info("order status changed",
		zap.Int64("order_id", o.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(next)),
	)
	return o, nil
}
