package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is built once at startup and handed to constructors. Nothing reads
// the environment after Load returns.
type Config struct {
	AppEnv  string `mapstructure:"APP_ENV"`
	AppHost string `mapstructure:"APP_HOST"`
	AppPort string `mapstructure:"APP_PORT"`
	Version string `mapstructure:"APP_VERSION"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	AccessTokenExpires time.Duration `mapstructure:"ACCESS_TOKEN_EXPIRE"`

	GeminiAPIKey  string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string        `mapstructure:"GEMINI_MODEL"`
	GeminiBaseURL string        `mapstructure:"GEMINI_BASE_URL"`
	GeminiTimeout time.Duration `mapstructure:"GEMINI_TIMEOUT"`

	ScraperTimeout   time.Duration `mapstructure:"SCRAPER_TIMEOUT"`
	ScraperUserAgent string        `mapstructure:"SCRAPER_USER_AGENT"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeProPriceID    string `mapstructure:"STRIPE_PRO_PRICE_ID"`
	FrontendURL         string `mapstructure:"FRONTEND_URL"`

	CORSOrigins string `mapstructure:"CORS_ORIGINS"`

	FreeTierLimit int64 `mapstructure:"FREE_TIER_LIMIT"`
	ProTierLimit  int64 `mapstructure:"PRO_TIER_LIMIT"`

	CacheHost     string `mapstructure:"CACHE_HOST"`
	CachePort     string `mapstructure:"CACHE_PORT"`
	CachePassword string `mapstructure:"CACHE_PASSWORD"`

	RateLimitMax    int           `mapstructure:"RATE_LIMIT_MAX"`
	RateLimitWindow time.Duration `mapstructure:"RATE_LIMIT_WINDOW"`

	MetricsUser     string `mapstructure:"METRICS_USER"`
	MetricsPassword string `mapstructure:"METRICS_PASSWORD"`

	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3Bucket          string `mapstructure:"S3_BUCKET"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3PathStyle       bool   `mapstructure:"S3_PATH_STYLE"`
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "8000")
	v.SetDefault("APP_VERSION", "1.0.0")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRE", "30m")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash-lite-preview-04-17")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("GEMINI_TIMEOUT", "60s")
	v.SetDefault("SCRAPER_TIMEOUT", "10s")
	v.SetDefault("SCRAPER_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("STRIPE_PRO_PRICE_ID", "")
	v.SetDefault("FRONTEND_URL", "http://localhost:3000")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("FREE_TIER_LIMIT", 10)
	v.SetDefault("PRO_TIER_LIMIT", 500)
	v.SetDefault("CACHE_HOST", "")
	v.SetDefault("CACHE_PORT", "6379")
	v.SetDefault("CACHE_PASSWORD", "")
	v.SetDefault("RATE_LIMIT_MAX", 60)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("METRICS_USER", "")
	v.SetDefault("METRICS_PASSWORD", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_PATH_STYLE", false)
}

// Load reads the configuration from the process environment. Call
// env.SetupEnvFile first when a .env file should be honoured.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.CORSOrigins = normalizeOrigins(cfg.CORSOrigins)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	if c.FreeTierLimit <= 0 || c.ProTierLimit <= 0 {
		return fmt.Errorf("tier limits must be positive (free=%d, pro=%d)", c.FreeTierLimit, c.ProTierLimit)
	}
	if c.ProTierLimit < c.FreeTierLimit {
		return fmt.Errorf("PRO_TIER_LIMIT (%d) must not be lower than FREE_TIER_LIMIT (%d)", c.ProTierLimit, c.FreeTierLimit)
	}
	if c.AccessTokenExpires <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE must be positive")
	}
	return nil
}

func (c Config) IsDev() bool {
	return c.AppEnv == "dev"
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

// BillingEnabled reports whether Stripe API calls (checkout, portal) can be made.
func (c Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

func (c Config) CacheEnabled() bool {
	return c.CacheHost != ""
}

// normalizeOrigins accepts either a comma separated list or a JSON style list
// (["a","b"]) and returns the comma separated form fiber's cors expects.
func normalizeOrigins(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}
