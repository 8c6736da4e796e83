package repository

import (
	"context"

	"evea/internal/database"
	"evea/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) WithTx(tx *gorm.DB) *CategoryRepository { return &CategoryRepository{db: tx} }

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.WithContext(ctx).Order("sort_order ASC").Order("name ASC").Find(&out).Error
	return out, err
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert inserts the category or refreshes it by slug. Used by the seeder.
func (r *CategoryRepository) Upsert(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "sort_order"}),
	}).Create(c).Error
}

func (r *CategoryRepository) Search(ctx context.Context, q string, limit int) ([]domain.Category, error) {
	var out []domain.Category
	err := r.db.WithContext(ctx).
		Where(database.LikeClause(r.db, "name"), database.LikePattern(q)).
		Order("sort_order ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
