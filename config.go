package resumekit

import (
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/joho/godotenv"
)

// Config carries everything the server needs, loaded from the environment.
type Config struct {
	Environment string
	BaseURL     string
	Address     string

	DSN string

	SigningKey string
	TokenTTL   time.Duration
	Issuer     string

	SessionCookieName string
	AdminCookieName   string
	AdminTokenHeader  string

	AdminEmail        string
	AdminPasswordHash string

	RazorpayKeyID     string
	RazorpayKeySecret string
	OrderAmount       int64
	OrderCurrency     string

	SMTP SMTPConfig
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() (*Config, error) {
	// missing .env is fine in production, the environment is already set
	_ = godotenv.Load()

	cfg := &Config{
		Environment: envString("APP_ENV", "development"),
		BaseURL:     envString("BASE_URL", "http://localhost:3000"),
		Address:     envString("LISTEN_ADDR", ":3000"),

		DSN: envString("DATABASE_DSN", "file:resumekit.db?cache=shared&_pragma=foreign_keys(1)"),

		SigningKey: envString("JWT_SIGNING_KEY", ""),
		TokenTTL:   envDuration("TOKEN_TTL", 168*time.Hour),
		Issuer:     envString("TOKEN_ISSUER", "resumekit"),

		SessionCookieName: envString("SESSION_COOKIE_NAME", "sessionToken"),
		AdminCookieName:   envString("ADMIN_COOKIE_NAME", "adminToken"),
		AdminTokenHeader:  envString("ADMIN_TOKEN_HEADER", "adminToken"),

		AdminEmail:        envString("ADMIN_EMAIL", ""),
		AdminPasswordHash: envString("ADMIN_PASSWORD_HASH", ""),

		RazorpayKeyID:     envString("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: envString("RAZORPAY_KEY_SECRET", ""),
		OrderAmount:       envInt64("ORDER_AMOUNT", 49900),
		OrderCurrency:     envString("ORDER_CURRENCY", "INR"),

		SMTP: SMTPConfig{
			Host:     envString("SMTP_HOST", ""),
			Port:     int(envInt64("SMTP_PORT", 587)),
			Username: envString("SMTP_USER", ""),
			Password: envString("SMTP_PASS", ""),
			From:     envString("SMTP_FROM", ""),
			BaseURL:  envString("BASE_URL", "http://localhost:3000"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate will run validation rules
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SigningKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Address, validation.Required),
		validation.Field(&c.DSN, validation.Required),
		validation.Field(&c.OrderAmount, validation.Required, validation.Min(int64(100))),
		validation.Field(&c.OrderCurrency, validation.Required, validation.Length(3, 3)),
		validation.Field(&c.RazorpayKeyID, validation.Required),
		validation.Field(&c.RazorpayKeySecret, validation.Required),
	)
}

// IsProduction reports whether the app runs with production hardening on.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}

	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}

	return d
}
