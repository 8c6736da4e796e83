package auth

import (
	"context"

	"evea/internal/domain"
)

type tokenSigner interface {
	GenerateToken(p domain.Principal) (string, error)
}

// GoogleIdentity is the verified subset of a Google id token.
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// GoogleExchanger runs the OAuth code flow. The production implementation
// talks to Google; tests substitute a mock.
type GoogleExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*GoogleIdentity, error)
}
