package review

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"evea/internal/database"
	"evea/internal/domain"
	"evea/internal/outbox"
	"evea/internal/repository"
)

type Service struct {
	db      *gorm.DB
	reviews *repository.ReviewRepository
	cards   *repository.VendorCardRepository
	vendors *repository.VendorRepository
	users   *repository.UserRepository
	log     *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:      db,
		reviews: repository.NewReviewRepository(db),
		cards:   repository.NewVendorCardRepository(db),
		vendors: repository.NewVendorRepository(db),
		users:   repository.NewUserRepository(db),
		log:     log,
	}
}

// Create stores the user's review of a card and refreshes the card's rating
// in the same transaction. A user reviews a card at most once and vendors
// cannot review their own card.
func (s *Service) Create(ctx context.Context, userID, cardID int64, req CreateReviewRequest) (*domain.Review, *CardRating, error) {
	card, err := s.cards.GetPublished(ctx, cardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	vendor, err := s.vendors.GetByID(ctx, card.VendorID)
	if err != nil {
		return nil, nil, err
	}
	if vendor.UserID == userID {
		return nil, nil, ErrForbidden
	}
	reviewer, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	rv := &domain.Review{
		VendorCardID: card.ID,
		UserID:       userID,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
	}
	var rating CardRating
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reviews.WithTx(tx).Create(ctx, rv); err != nil {
			return err
		}
		cards := s.cards.WithTx(tx)
		if err := cards.RefreshRating(ctx, card.ID); err != nil {
			return err
		}
		updated, err := cards.GetByID(ctx, card.ID)
		if err != nil {
			return err
		}
		rating = CardRating{Rating: updated.Rating, ReviewCount: updated.ReviewCount}

		_, err = outbox.Enqueue(tx, outbox.TopicReviewCreated, outbox.ReviewCreated{
			ReviewID:     rv.ID,
			VendorCardID: card.ID,
			CardTitle:    card.Title,
			VendorUserID: vendor.UserID,
			Rating:       rv.Rating,
			ReviewerName: reviewer.FullName,
		})
		return err
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, nil, ErrConflict
		}
		return nil, nil, err
	}

	rv.User = reviewer
	s.log.Info("review created",
		zap.Int64("review_id", rv.ID),
		zap.Int64("vendor_card_id", card.ID),
		zap.Int("rating", rv.Rating),
	)
	return rv, &rating, nil
}

// ListByCard returns reviews of a published card, newest first.
func (s *Service) ListByCard(ctx context.Context, cardID int64, limit, offset int) ([]domain.Review, int64, error) {
	if _, err := s.cards.GetPublished(ctx, cardID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}
	return s.reviews.ListByCard(ctx, cardID, limit, offset)
}
