package repository

import (
	"context"
	"time"

	"evea/internal/domain"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) WithTx(tx *gorm.DB) *OrderRepository { return &OrderRepository{db: tx} }

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Preload("VendorCard").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Order, int64, error) {
	return r.list(ctx, limit, offset, "user_id = ?", userID)
}

func (r *OrderRepository) ListByVendor(ctx context.Context, vendorID int64, status domain.OrderStatus, limit, offset int) ([]domain.Order, int64, error) {
	if status != "" {
		return r.list(ctx, limit, offset, "vendor_id = ? AND status = ?", vendorID, status)
	}
	return r.list(ctx, limit, offset, "vendor_id = ?", vendorID)
}

func (r *OrderRepository) list(ctx context.Context, limit, offset int, cond string, args ...any) ([]domain.Order, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where(cond, args...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Order
	err := r.db.WithContext(ctx).
		Where(cond, args...).
		Preload("VendorCard").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, total, err
}

// UpdateStatus moves the order only if it is still in status from.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
