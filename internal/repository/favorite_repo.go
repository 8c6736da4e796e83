package repository

import (
	"context"

	"evea/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add is idempotent: adding a card twice keeps a single row.
func (r *FavoriteRepository) Add(ctx context.Context, userID, cardID int64) (*domain.UserFavorite, error) {
	fav := &domain.UserFavorite{UserID: userID, VendorCardID: cardID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fav).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("user_id = ? AND vendor_card_id = ?", userID, cardID).
		Preload("VendorCard").
		First(fav).Error
	if err != nil {
		return nil, err
	}
	return fav, nil
}

// Remove reports whether a row was deleted.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, cardID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND vendor_card_id = ?", userID, cardID).
		Delete(&domain.UserFavorite{})
	return res.RowsAffected > 0, res.Error
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.UserFavorite, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.UserFavorite{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var favorites []domain.UserFavorite
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("VendorCard").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&favorites).Error
	return favorites, total, err
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, cardID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.UserFavorite{}).
		Where("user_id = ? AND vendor_card_id = ?", userID, cardID).
		Count(&n).Error
	return n > 0, err
}
