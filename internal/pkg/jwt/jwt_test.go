package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evea/internal/domain"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("test-secret", 7*24*time.Hour)
	vendorID := int64(12)

	token, err := svc.GenerateToken(domain.Principal{UserID: 5, Role: domain.RoleVendor, VendorID: &vendorID, Email: "v@x.com"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	p := claims.Principal()
	assert.Equal(t, int64(5), p.UserID)
	assert.Equal(t, domain.RoleVendor, p.Role)
	require.NotNil(t, p.VendorID)
	assert.Equal(t, int64(12), *p.VendorID)
	assert.True(t, p.IsVendor())
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := New("a", time.Hour).GenerateToken(domain.Principal{UserID: 1, Role: domain.RoleCustomer})
	require.NoError(t, err)

	_, err = New("b", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	token, err := New("a", -time.Minute).GenerateToken(domain.Principal{UserID: 1, Role: domain.RoleCustomer})
	require.NoError(t, err)

	_, err = New("a", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_UnknownRole(t *testing.T) {
	token, err := New("a", time.Hour).GenerateToken(domain.Principal{UserID: 1, Role: "studio_owner"})
	require.NoError(t, err)

	_, err = New("a", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
