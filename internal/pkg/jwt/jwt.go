package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"evea/internal/domain"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidClaims = errors.New("invalid claims")
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	UserID   int64  `json:"user_id"`
	Role     string `json:"role"`
	VendorID *int64 `json:"vendor_id,omitempty"`
	Email    string `json:"email,omitempty"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *Service) TTL() time.Duration { return s.ttl }

// GenerateToken signs a session token for the principal.
func (s *Service) GenerateToken(p domain.Principal) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   p.UserID,
		Role:     string(p.Role),
		VendorID: p.VendorID,
		Email:    p.Email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
			Issuer:    "evea",
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID <= 0 || !domain.UserRole(claims.Role).Valid() {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}

// Principal converts validated claims to the typed request principal.
func (c *Claims) Principal() domain.Principal {
	return domain.Principal{
		UserID:   c.UserID,
		Role:     domain.UserRole(c.Role),
		VendorID: c.VendorID,
		Email:    c.Email,
	}
}
