package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Log      LogConfig
	Auth     AuthConfig
	Download DownloadConfig
	SMTP     SMTPConfig
	Razorpay RazorpayConfig
	Cashfree CashfreeConfig
	Rate     RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
	// BaseURL is the public origin used when building download links.
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:3000"`
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
// In production, set DB_SSLMODE to "require" or "verify-full".
type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name     string `envconfig:"DB_NAME" default:"templatestore"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"` // Use "require" in production
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// AuthConfig holds admin credential configuration. AdminEmails seeds the
// whitelist only until a settings row exists; the settings row is canonical.
type AuthConfig struct {
	JWTSecret   string   `envconfig:"AUTH_JWT_SECRET"`
	TokenTTL    int      `envconfig:"AUTH_TOKEN_TTL_HOURS" default:"24"` // hours
	AdminEmails []string `envconfig:"ADMIN_EMAILS"`
}

// DownloadConfig holds download token configuration.
type DownloadConfig struct {
	TokenTTLHours int `envconfig:"DOWNLOAD_TOKEN_TTL_HOURS" default:"72"`
}

// SMTPConfig holds outbound email configuration. When Host is empty the
// store runs without email delivery.
type SMTPConfig struct {
	Host        string `envconfig:"SMTP_HOST"`
	Port        int    `envconfig:"SMTP_PORT" default:"587"`
	Username    string `envconfig:"SMTP_USERNAME"`
	Password    string `envconfig:"SMTP_PASSWORD"`
	FromAddress string `envconfig:"SMTP_FROM_ADDRESS"`
	FromName    string `envconfig:"SMTP_FROM_NAME" default:"Template Store"`
}

// RazorpayConfig holds Razorpay gateway credentials.
type RazorpayConfig struct {
	KeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`
	BaseURL   string `envconfig:"RAZORPAY_BASE_URL"`
}

// CashfreeConfig holds Cashfree gateway credentials.
type CashfreeConfig struct {
	ClientID     string `envconfig:"CASHFREE_CLIENT_ID"`
	ClientSecret string `envconfig:"CASHFREE_CLIENT_SECRET"`
	BaseURL      string `envconfig:"CASHFREE_BASE_URL"`
	APIVersion   string `envconfig:"CASHFREE_API_VERSION"`
}

// RateLimitConfig holds the per-IP token bucket settings for the public
// coupon-verify and download endpoints.
type RateLimitConfig struct {
	PerSecond float64 `envconfig:"RATE_LIMIT_PER_SECOND" default:"2"`
	Burst     int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
