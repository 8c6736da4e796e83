package database

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evea/internal/domain"
)

func TestConnectAndMigrate(t *testing.T) {
	db := OpenTest(t)
	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	db := OpenTest(t)

	require.NoError(t, db.Create(&domain.User{FullName: "A", Email: "a@x.com", PasswordHash: "h", Role: domain.RoleCustomer}).Error)
	err := db.Create(&domain.User{FullName: "B", Email: "a@x.com", PasswordHash: "h", Role: domain.RoleCustomer}).Error

	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestIsUniqueViolation_Postgres(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%dj%", LikePattern(" dj "))
	assert.Equal(t, `%50\%\_off%`, LikePattern("50%_off"))
}

func TestIsPostgresDSN(t *testing.T) {
	assert.True(t, IsPostgresDSN("postgres://u:p@localhost/evea"))
	assert.False(t, IsPostgresDSN("evea.db"))
}
