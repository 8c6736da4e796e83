package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evea/internal/database"
	"evea/internal/domain"
	"evea/internal/pkg/password"
)

func TestRun_Idempotent(t *testing.T) {
	db := database.OpenTest(t)
	ctx := context.Background()
	opts := Options{AdminEmail: "Admin@Evea.in", AdminPassword: "admin12345", Demo: true}

	res, err := Run(ctx, db, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, len(Categories), res.Categories)
	assert.True(t, res.AdminCreated)
	assert.Equal(t, len(demoVendors), res.DemoVendors)

	again, err := Run(ctx, db, opts, nil)
	require.NoError(t, err)
	assert.False(t, again.AdminCreated)
	assert.Zero(t, again.DemoVendors)

	var n int64
	require.NoError(t, db.Model(&domain.Category{}).Count(&n).Error)
	assert.EqualValues(t, len(Categories), n)
	require.NoError(t, db.Model(&domain.VendorCard{}).Where("is_published = ?", true).Count(&n).Error)
	assert.EqualValues(t, len(demoVendors), n)

	var admin domain.User
	require.NoError(t, db.Where("email = ?", "admin@evea.in").First(&admin).Error)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.True(t, admin.IsActive)
	assert.NoError(t, password.Check("admin12345", admin.PasswordHash))
}

func TestRun_RejectsShortAdminPassword(t *testing.T) {
	db := database.OpenTest(t)

	_, err := Run(context.Background(), db, Options{AdminEmail: "admin@evea.in", AdminPassword: "short"}, nil)
	assert.Error(t, err)
}
