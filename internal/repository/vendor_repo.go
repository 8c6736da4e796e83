package repository

import (
	"context"
	"strings"
	"time"

	"evea/internal/domain"

	"gorm.io/gorm"
)

type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

func (r *VendorRepository) WithTx(tx *gorm.DB) *VendorRepository { return &VendorRepository{db: tx} }

func (r *VendorRepository) Create(ctx context.Context, v *domain.Vendor) error {
	return r.db.WithContext(ctx).Create(v).Error
}

// GetByID loads the vendor with its user.
func (r *VendorRepository) GetByID(ctx context.Context, id int64) (*domain.Vendor, error) {
	var v domain.Vendor
	if err := r.db.WithContext(ctx).Preload("User").First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VendorRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Vendor, error) {
	var v domain.Vendor
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// BusinessNameTaken compares case-insensitively.
func (r *VendorRepository) BusinessNameTaken(ctx context.Context, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Vendor{}).
		Where("LOWER(business_name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&n).Error
	return n > 0, err
}

// CompareAndSet applies fields only if the vendor is still at the expected
// (step, status). Zero affected rows means another request moved it first.
func (r *VendorRepository) CompareAndSet(ctx context.Context, id int64, step int, status domain.VerificationStatus, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.Vendor{}).
		Where("id = ? AND registration_step = ? AND verification_status = ?", id, step, status).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// ListForReview returns vendors awaiting an admin decision (step 3) with the
// given status, oldest first.
func (r *VendorRepository) ListForReview(ctx context.Context, status domain.VerificationStatus, limit, offset int) ([]domain.Vendor, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Vendor{}).
		Where("verification_status = ? AND registration_step = ?", status, domain.StepDocumentsUploaded)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var vendors []domain.Vendor
	err := q.Preload("User").
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&vendors).Error
	return vendors, total, err
}
