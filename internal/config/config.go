package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultDatabaseURL       = "evea.db"
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultSessionTTL        = "168h"
	defaultSessionCookie     = "evea_session"
	defaultCookieSecure      = "false"
	defaultCookieSameSite    = "Lax"
	defaultCookiePath        = "/"
	defaultVerifyTokenTTL    = "24h"
	defaultVerifyResend      = "60s"
	defaultAppBaseURL        = "http://localhost:8080"
	defaultFrontendURL       = "http://localhost:3000"
	defaultMailDriver        = "console"
	defaultMailFrom          = "Evea <no-reply@evea.in>"
	defaultSMTPPort          = "587"
	defaultStorageDriver     = "local"
	defaultStorageLocalDir   = "./uploads"
	defaultStoragePublicURL  = "/static/uploads"
	defaultS3Region          = "ap-south-1"
	defaultRateLimitEnabled  = "true"
	defaultRateLimitCapacity = "20"
	defaultRateLimitRefill   = "0.5"
	defaultCacheTTL          = "60s"
	defaultAMQPExchange      = "evea.events"
	defaultOutboxInline      = "true"
	defaultOutboxInterval    = "5s"
	defaultOutboxBatchSize   = "50"
	defaultOutboxMaxAttempts = "8"
	defaultLogLevel          = "info"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	AppBaseURL  string
	FrontendURL string
	LogLevel    string

	Auth      AuthConfig
	Google    GoogleConfig
	Mail      MailConfig
	Storage   StorageConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	AMQP      AMQPConfig
	Outbox    OutboxConfig
}

type AuthConfig struct {
	JWTSecret            string
	SessionTTL           time.Duration
	CookieName           string
	CookieSecure         bool
	CookieSameSite       string
	CookiePath           string
	VerificationTokenTTL time.Duration
	VerifyResendCooldown time.Duration
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Enabled reports whether OAuth sign-in is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type MailConfig struct {
	Driver         string
	From           string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SendGridAPIKey string
}

type StorageConfig struct {
	Driver        string
	LocalDir      string
	PublicURL     string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	DriveFolderID string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type RateLimitConfig struct {
	Enabled      bool
	Capacity     int
	RefillPerSec float64
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type OutboxConfig struct {
	Inline      bool
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

// Load reads .env (if present) and the process environment. Real environment
// variables win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)
	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.AppBaseURL = strings.TrimRight(getEnv("APP_BASE_URL", defaultAppBaseURL), "/")
	cfg.FrontendURL = strings.TrimRight(getEnv("FRONTEND_URL", defaultFrontendURL), "/")
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel))

	var err error
	if cfg.Auth, err = loadAuth(); err != nil {
		return nil, err
	}

	cfg.Google = GoogleConfig{
		ClientID:     strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_ID")),
		ClientSecret: strings.TrimSpace(os.Getenv("GOOGLE_CLIENT_SECRET")),
		RedirectURI:  strings.TrimSpace(getEnv("GOOGLE_REDIRECT_URI", cfg.AppBaseURL+"/api/auth/google/callback")),
	}

	smtpPort, err := parseIntEnv("SMTP_PORT", defaultSMTPPort)
	if err != nil {
		return nil, err
	}
	cfg.Mail = MailConfig{
		Driver:         strings.ToLower(getEnv("MAIL_DRIVER", defaultMailDriver)),
		From:           getEnv("MAIL_FROM", defaultMailFrom),
		SMTPHost:       os.Getenv("SMTP_HOST"),
		SMTPPort:       smtpPort,
		SMTPUsername:   os.Getenv("SMTP_USERNAME"),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
	}

	cfg.Storage = StorageConfig{
		Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", defaultStorageDriver)),
		LocalDir:      getEnv("STORAGE_LOCAL_DIR", defaultStorageLocalDir),
		PublicURL:     strings.TrimRight(getEnv("STORAGE_PUBLIC_URL", defaultStoragePublicURL), "/"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      getEnv("S3_REGION", defaultS3Region),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
		DriveFolderID: os.Getenv("GDRIVE_FOLDER_ID"),
	}

	redisDB, err := parseIntEnv("REDIS_DB", "0")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDurationEnv("CACHE_TTL", defaultCacheTTL)
	if err != nil {
		return nil, err
	}
	cfg.Redis = RedisConfig{
		Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
		CacheTTL: cacheTTL,
	}

	capacity, err := parseIntEnv("RATE_LIMIT_CAPACITY", defaultRateLimitCapacity)
	if err != nil {
		return nil, err
	}
	refill, err := parseFloatEnv("RATE_LIMIT_REFILL_PER_SEC", defaultRateLimitRefill)
	if err != nil {
		return nil, err
	}
	cfg.RateLimit = RateLimitConfig{
		Enabled:      parseBoolEnv("RATE_LIMIT_ENABLED", defaultRateLimitEnabled),
		Capacity:     capacity,
		RefillPerSec: refill,
	}

	cfg.AMQP = AMQPConfig{
		URL:      strings.TrimSpace(os.Getenv("AMQP_URL")),
		Exchange: getEnv("AMQP_EXCHANGE", defaultAMQPExchange),
	}

	if cfg.Outbox, err = loadOutbox(); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadAuth() (AuthConfig, error) {
	a := AuthConfig{
		JWTSecret:      strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		CookieName:     strings.TrimSpace(getEnv("SESSION_COOKIE_NAME", defaultSessionCookie)),
		CookieSecure:   parseBoolEnv("COOKIE_SECURE", defaultCookieSecure),
		CookieSameSite: strings.TrimSpace(getEnv("COOKIE_SAMESITE", defaultCookieSameSite)),
		CookiePath:     strings.TrimSpace(getEnv("COOKIE_PATH", defaultCookiePath)),
	}

	var err error
	if a.SessionTTL, err = parseDurationEnv("SESSION_TTL", defaultSessionTTL); err != nil {
		return a, err
	}
	if a.VerificationTokenTTL, err = parseDurationEnv("VERIFICATION_TOKEN_TTL", defaultVerifyTokenTTL); err != nil {
		return a, err
	}
	if a.VerifyResendCooldown, err = parseDurationEnv("VERIFY_RESEND_COOLDOWN", defaultVerifyResend); err != nil {
		return a, err
	}
	return a, nil
}

func loadOutbox() (OutboxConfig, error) {
	o := OutboxConfig{Inline: parseBoolEnv("OUTBOX_INLINE", defaultOutboxInline)}

	var err error
	if o.Interval, err = parseDurationEnv("OUTBOX_INTERVAL", defaultOutboxInterval); err != nil {
		return o, err
	}
	if o.BatchSize, err = parseIntEnv("OUTBOX_BATCH_SIZE", defaultOutboxBatchSize); err != nil {
		return o, err
	}
	if o.MaxAttempts, err = parseIntEnv("OUTBOX_MAX_ATTEMPTS", defaultOutboxMaxAttempts); err != nil {
		return o, err
	}
	return o, nil
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if cfg.Auth.VerificationTokenTTL <= 0 {
		return fmt.Errorf("VERIFICATION_TOKEN_TTL must be > 0")
	}
	if cfg.Auth.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	if cfg.Auth.CookiePath == "" {
		return fmt.Errorf("COOKIE_PATH must not be empty")
	}
	sameSite := strings.ToLower(cfg.Auth.CookieSameSite)
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !cfg.Auth.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}

	switch cfg.Mail.Driver {
	case "console":
	case "smtp":
		if cfg.Mail.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when MAIL_DRIVER=smtp")
		}
	case "sendgrid":
		if cfg.Mail.SendGridAPIKey == "" {
			return fmt.Errorf("SENDGRID_API_KEY is required when MAIL_DRIVER=sendgrid")
		}
	default:
		return fmt.Errorf("MAIL_DRIVER must be one of: console, smtp, sendgrid")
	}

	switch cfg.Storage.Driver {
	case "local", "gdrive":
	case "s3":
		if cfg.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, s3, gdrive")
	}

	if cfg.RateLimit.Capacity <= 0 || cfg.RateLimit.RefillPerSec <= 0 {
		return fmt.Errorf("RATE_LIMIT_CAPACITY and RATE_LIMIT_REFILL_PER_SEC must be > 0")
	}
	if cfg.Outbox.Interval <= 0 || cfg.Outbox.BatchSize <= 0 || cfg.Outbox.MaxAttempts <= 0 {
		return fmt.Errorf("OUTBOX_INTERVAL, OUTBOX_BATCH_SIZE and OUTBOX_MAX_ATTEMPTS must be > 0")
	}

	if IsProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.Auth.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if !cfg.Auth.CookieSecure {
			return fmt.Errorf("in prod/release COOKIE_SECURE must be true")
		}
	}

	return nil
}

func IsProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseFloatEnv(name, fallback string) (float64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return f, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
