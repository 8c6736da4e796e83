package repository

import (
	"context"
	"time"

	"evea/internal/domain"

	"gorm.io/gorm"
)

// VerificationTokenRepository stores hashes of email verification tokens.
type VerificationTokenRepository struct {
	db *gorm.DB
}

func NewVerificationTokenRepository(db *gorm.DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: db}
}

func (r *VerificationTokenRepository) WithTx(tx *gorm.DB) *VerificationTokenRepository {
	return &VerificationTokenRepository{db: tx}
}

func (r *VerificationTokenRepository) Create(ctx context.Context, t *domain.EmailVerificationToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *VerificationTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.EmailVerificationToken, error) {
	var t domain.EmailVerificationToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", hash).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// LatestForUser returns the most recently issued token, used for the resend cool-down.
func (r *VerificationTokenRepository) LatestForUser(ctx context.Context, userID int64) (*domain.EmailVerificationToken, error) {
	var t domain.EmailVerificationToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkUsed consumes the token. Returns ErrConflict if it was already used.
func (r *VerificationTokenRepository) MarkUsed(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.EmailVerificationToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// DeleteExpired removes unused tokens that expired before the cutoff. Used
// tokens are kept so a replayed link still reads "already verified".
func (r *VerificationTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("used_at IS NULL AND expires_at < ?", before).
		Delete(&domain.EmailVerificationToken{})
	return res.RowsAffected, res.Error
}
