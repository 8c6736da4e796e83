package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MAIL_DRIVER", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, "evea_session", cfg.Auth.CookieName)
	assert.Equal(t, 168.0, cfg.Auth.SessionTTL.Hours())
	assert.Equal(t, "console", cfg.Mail.Driver)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 8, cfg.Outbox.MaxAttempts)
}

func TestLoad_ProdRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("COOKIE_SECURE", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_SameSiteNoneNeedsSecure(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("COOKIE_SAMESITE", "None")
	t.Setenv("COOKIE_SECURE", "false")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_SMTPDriverNeedsHost(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("MAIL_DRIVER", "smtp")
	t.Setenv("SMTP_HOST", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP_HOST")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_TTL", "seven days")

	_, err := Load()
	require.Error(t, err)
}

func TestGoogleConfig_Enabled(t *testing.T) {
	assert.False(t, GoogleConfig{}.Enabled())
	assert.True(t, GoogleConfig{ClientID: "id", ClientSecret: "secret"}.Enabled())
}
