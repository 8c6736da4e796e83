package repository

import (
	"context"

	"evea/internal/domain"

	"gorm.io/gorm"
)

type VendorServiceRepository struct {
	db *gorm.DB
}

func NewVendorServiceRepository(db *gorm.DB) *VendorServiceRepository {
	return &VendorServiceRepository{db: db}
}

func (r *VendorServiceRepository) WithTx(tx *gorm.DB) *VendorServiceRepository {
	return &VendorServiceRepository{db: tx}
}

func (r *VendorServiceRepository) Create(ctx context.Context, s *domain.VendorService) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *VendorServiceRepository) GetByVendorID(ctx context.Context, vendorID int64) (*domain.VendorService, error) {
	var s domain.VendorService
	if err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *VendorServiceRepository) CountByVendor(ctx context.Context, vendorID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.VendorService{}).Where("vendor_id = ?", vendorID).Count(&n).Error
	return n, err
}
