package repository

import (
	"context"
	"errors"
	"time"

	"evea/internal/domain"

	"gorm.io/gorm"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) WithTx(tx *gorm.DB) *CartRepository { return &CartRepository{db: tx} }

func (r *CartRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("VendorCard").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *CartRepository) GetForUser(ctx context.Context, userID, id int64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Preload("VendorCard").
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Add inserts the item or, when the card is already in the cart, increments
// its quantity and overwrites event date and notes if given.
func (r *CartRepository) Add(ctx context.Context, item *domain.CartItem) error {
	var existing domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND vendor_card_id = ?", item.UserID, item.VendorCardID).
		First(&existing).Error
	switch {
	case err == nil:
		fields := map[string]any{
			"quantity":   gorm.Expr("quantity + ?", item.Quantity),
			"updated_at": time.Now().UTC(),
		}
		if item.EventDate != nil {
			fields["event_date"] = item.EventDate
		}
		if item.Notes != "" {
			fields["notes"] = item.Notes
		}
		if err := r.db.WithContext(ctx).Model(&existing).Updates(fields).Error; err != nil {
			return err
		}
		return r.db.WithContext(ctx).First(item, existing.ID).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.db.WithContext(ctx).Create(item).Error
	default:
		return err
	}
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, id int64, qty int) error {
	res := r.db.WithContext(ctx).Model(&domain.CartItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, userID, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
}
