package repository

import (
	"context"
	"time"

	"evea/internal/domain"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) WithTx(tx *gorm.DB) *DocumentRepository { return &DocumentRepository{db: tx} }

func (r *DocumentRepository) CreateBatch(ctx context.Context, docs []domain.VendorDocument) error {
	if len(docs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&docs).Error
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*domain.VendorDocument, error) {
	var d domain.VendorDocument
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepository) ListByVendor(ctx context.Context, vendorID int64) ([]domain.VendorDocument, error) {
	var docs []domain.VendorDocument
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("id ASC").
		Find(&docs).Error
	return docs, err
}

func (r *DocumentRepository) CountByVendor(ctx context.Context, vendorID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.VendorDocument{}).Where("vendor_id = ?", vendorID).Count(&n).Error
	return n, err
}

func (r *DocumentRepository) Review(ctx context.Context, id int64, status domain.DocumentStatus, notes string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.VendorDocument{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"verification_status": status,
			"review_notes":        notes,
			"reviewed_at":         at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// VerifyPending marks every still-pending document of the vendor verified.
func (r *DocumentRepository) VerifyPending(ctx context.Context, vendorID int64, notes string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.VendorDocument{}).
		Where("vendor_id = ? AND verification_status = ?", vendorID, domain.DocumentPending).
		Updates(map[string]any{
			"verification_status": domain.DocumentVerified,
			"review_notes":        notes,
			"reviewed_at":         at,
		})
	return res.RowsAffected, res.Error
}
