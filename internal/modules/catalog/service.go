package catalog

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/domain"
	"evea/internal/repository"
)

type Service struct {
	categories *repository.CategoryRepository
	cards      *repository.VendorCardRepository
	log        *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		categories: repository.NewCategoryRepository(db),
		cards:      repository.NewVendorCardRepository(db),
		log:        log,
	}
}

func (s *Service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// ListCards returns one page of published cards.
func (s *Service) ListCards(ctx context.Context, q CardQuery) (*CardList, error) {
	f := q.Filter
	if f.Sort == "" {
		f.Sort = repository.SortFeatured
	}
	if !repository.ValidCardSort(f.Sort) {
		return nil, ErrInvalidSort
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, ErrInvalidPriceRange
	}
	f.Limit = q.Limit
	f.Offset = (q.Page - 1) * q.Limit

	cards, total, err := s.cards.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []domain.VendorCard{}
	}
	return &CardList{Items: cards, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// GetCard returns a published card. Hidden cards (suspended vendors) are
// reported as missing.
func (s *Service) GetCard(ctx context.Context, id int64) (*domain.VendorCard, error) {
	card, err := s.cards.GetPublished(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return card, nil
}

// Search matches q against listings and categories.
func (s *Service) Search(ctx context.Context, q string, limit int) (*SearchResult, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < minSearchLength {
		return nil, ErrQueryTooShort
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	cards, err := s.cards.Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	cats, err := s.categories.Search(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	if cards == nil {
		cards = []domain.VendorCard{}
	}
	if cats == nil {
		cats = []domain.Category{}
	}

	s.log.Debug("search", zap.String("q", q), zap.Int("cards", len(cards)), zap.Int("categories", len(cats)))
	return &SearchResult{Query: q, Cards: cards, Categories: cats}, nil
}
