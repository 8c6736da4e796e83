package repository

import (
	"context"

	"evea/internal/domain"

	"gorm.io/gorm"
)

// AdminReviewRepository is append-only.
type AdminReviewRepository struct {
	db *gorm.DB
}

func NewAdminReviewRepository(db *gorm.DB) *AdminReviewRepository {
	return &AdminReviewRepository{db: db}
}

func (r *AdminReviewRepository) WithTx(tx *gorm.DB) *AdminReviewRepository {
	return &AdminReviewRepository{db: tx}
}

func (r *AdminReviewRepository) Create(ctx context.Context, rv *domain.AdminReview) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *AdminReviewRepository) ListByVendor(ctx context.Context, vendorID int64) ([]domain.AdminReview, error) {
	var out []domain.AdminReview
	err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *AdminReviewRepository) CountByStatus(ctx context.Context, vendorID int64, status domain.ReviewStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.AdminReview{}).
		Where("vendor_id = ? AND review_status = ?", vendorID, status).
		Count(&n).Error
	return n, err
}
