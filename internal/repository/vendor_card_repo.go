package repository

import (
	"context"
	"strings"

	"evea/internal/database"
	"evea/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SortFeatured  = "featured"
	SortRating    = "rating"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

var cardOrderings = map[string]string{
	SortFeatured:  "vendor_cards.is_featured DESC, vendor_cards.rating DESC, vendor_cards.review_count DESC, vendor_cards.id ASC",
	SortRating:    "vendor_cards.rating DESC, vendor_cards.review_count DESC, vendor_cards.id ASC",
	SortPriceAsc:  "vendor_cards.price_from ASC, vendor_cards.id ASC",
	SortPriceDesc: "vendor_cards.price_from DESC, vendor_cards.id ASC",
	SortNewest:    "vendor_cards.created_at DESC, vendor_cards.id DESC",
}

// ValidCardSort reports whether s is one of the whitelisted sort keys.
func ValidCardSort(s string) bool {
	_, ok := cardOrderings[s]
	return ok
}

type CardFilter struct {
	CategoryID   int64
	CategorySlug string
	City         string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinRating    float64
	Featured     *bool
	Sort         string
	Limit        int
	Offset       int
}

type VendorCardRepository struct {
	db *gorm.DB
}

func NewVendorCardRepository(db *gorm.DB) *VendorCardRepository {
	return &VendorCardRepository{db: db}
}

func (r *VendorCardRepository) WithTx(tx *gorm.DB) *VendorCardRepository {
	return &VendorCardRepository{db: tx}
}

func (r *VendorCardRepository) Create(ctx context.Context, c *domain.VendorCard) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// List returns published cards matching f.
func (r *VendorCardRepository) List(ctx context.Context, f CardFilter) ([]domain.VendorCard, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.VendorCard{}).
		Where("vendor_cards.is_published = ?", true)

	if f.CategoryID > 0 {
		q = q.Where("vendor_cards.category_id = ?", f.CategoryID)
	}
	if f.CategorySlug != "" {
		q = q.Where("vendor_cards.category_id IN (?)",
			r.db.Model(&domain.Category{}).Select("id").Where("slug = ?", f.CategorySlug))
	}
	if city := strings.TrimSpace(f.City); city != "" {
		q = q.Where("LOWER(vendor_cards.city) = ?", strings.ToLower(city))
	}
	if f.MinPrice != nil {
		q = q.Where("vendor_cards.price_from >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("vendor_cards.price_from <= ?", *f.MaxPrice)
	}
	if f.MinRating > 0 {
		q = q.Where("vendor_cards.rating >= ?", f.MinRating)
	}
	if f.Featured != nil {
		q = q.Where("vendor_cards.is_featured = ?", *f.Featured)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := cardOrderings[f.Sort]
	if !ok {
		order = cardOrderings[SortFeatured]
	}

	var cards []domain.VendorCard
	err := q.Preload("Category").
		Order(order).
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&cards).Error
	return cards, total, err
}

func (r *VendorCardRepository) GetByID(ctx context.Context, id int64) (*domain.VendorCard, error) {
	var c domain.VendorCard
	if err := r.db.WithContext(ctx).Preload("Category").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetPublished is GetByID restricted to published cards.
func (r *VendorCardRepository) GetPublished(ctx context.Context, id int64) (*domain.VendorCard, error) {
	var c domain.VendorCard
	err := r.db.WithContext(ctx).Preload("Category").
		Where("is_published = ?", true).
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *VendorCardRepository) GetByVendorID(ctx context.Context, vendorID int64) (*domain.VendorCard, error) {
	var c domain.VendorCard
	if err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *VendorCardRepository) SetPublished(ctx context.Context, vendorID int64, published bool) error {
	return r.db.WithContext(ctx).Model(&domain.VendorCard{}).
		Where("vendor_id = ?", vendorID).
		Update("is_published", published).Error
}

// Search matches q against card title, description and city, the vendor's
// business name and the category name. A card matching on several columns
// still appears once because every join is one-to-one.
func (r *VendorCardRepository) Search(ctx context.Context, q string, limit int) ([]domain.VendorCard, error) {
	pattern := database.LikePattern(q)
	columns := []string{
		"vendor_cards.title",
		"vendor_cards.description",
		"vendor_cards.city",
		"vendors.business_name",
		"categories.name",
	}
	conds := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		conds[i] = database.LikeClause(r.db, col)
		args[i] = pattern
	}

	var cards []domain.VendorCard
	err := r.db.WithContext(ctx).
		Select("vendor_cards.*").
		Joins("JOIN vendors ON vendors.id = vendor_cards.vendor_id").
		Joins("LEFT JOIN categories ON categories.id = vendor_cards.category_id").
		Where("vendor_cards.is_published = ?", true).
		Where("("+strings.Join(conds, " OR ")+")", args...).
		Preload("Category").
		Order(cardOrderings[SortFeatured]).
		Limit(limit).
		Find(&cards).Error
	return cards, err
}

// RefreshRating recomputes rating and review_count from the reviews table.
func (r *VendorCardRepository) RefreshRating(ctx context.Context, cardID int64) error {
	var stats struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("vendor_card_id = ?", cardID).
		Scan(&stats).Error
	if err != nil {
		return err
	}

	rating := decimal.NewFromFloat(stats.Avg).Round(2).InexactFloat64()
	return r.db.WithContext(ctx).Model(&domain.VendorCard{}).
		Where("id = ?", cardID).
		Updates(map[string]any{"rating": rating, "review_count": stats.Count}).Error
}

// DedupeByVendor deletes all but the newest card of every vendor. Databases
// created before vendor_id became unique may hold duplicates.
func (r *VendorCardRepository) DedupeByVendor(ctx context.Context) (int64, error) {
	keep := r.db.Model(&domain.VendorCard{}).Select("MAX(id)").Group("vendor_id")
	res := r.db.WithContext(ctx).Where("id NOT IN (?)", keep).Delete(&domain.VendorCard{})
	return res.RowsAffected, res.Error
}
