// Package verification issues single-use email verification tokens.
package verification

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evea/internal/domain"
	"evea/internal/outbox"
	"evea/internal/repository"
)

// Hash is what gets stored; the raw token only ever leaves the process in
// the verification email.
func Hash(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

type Issuer struct {
	TTL time.Duration
	Now func() time.Time
}

func NewIssuer(ttl time.Duration) *Issuer {
	return &Issuer{TTL: ttl, Now: func() time.Time { return time.Now().UTC() }}
}

// Issue creates a token for u inside tx, points users.verification_token at
// it and enqueues the verification email. It returns the raw token.
func (i *Issuer) Issue(ctx context.Context, tx *gorm.DB, u *domain.User) (string, error) {
	now := i.Now()
	raw := strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
	hash := Hash(raw)

	tok := &domain.EmailVerificationToken{
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: now.Add(i.TTL),
		CreatedAt: now,
	}
	if err := repository.NewVerificationTokenRepository(tx).Create(ctx, tok); err != nil {
		return "", fmt.Errorf("create verification token: %w", err)
	}
	if err := repository.NewUserRepository(tx).UpdateFields(ctx, u.ID, map[string]any{"verification_token": hash}); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	_, err := outbox.Enqueue(tx, outbox.TopicVerificationRequested, outbox.VerificationRequested{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.FullName,
		Token:     raw,
		ExpiresAt: tok.ExpiresAt,
	}, outbox.Sensitive())
	if err != nil {
		return "", err
	}
	return raw, nil
}
