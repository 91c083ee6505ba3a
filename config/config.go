package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	Port       string
	AppEnv     string
	AppURL     string
	LogLevel   string
	DBURL      string
	CORSOrigin string

	StripeSecretKey        string
	StripeWebhookSecret    string
	StripeWebhookTolerance time.Duration

	// Price ids for the paid tiers. Anything else resolves to free.
	StripePriceBasic      string
	StripePricePro        string
	StripePriceEnterprise string

	AuthIssuerURL string
	AuthJWKSURL   string
	JWTSecret     string

	AyrshareAPIURL string
	AyrshareAPIKey string

	// Auth subjects allowed on the operator routes.
	AdminAuthIDs []string
}

// Load reads the environment (and a .env file when present).
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	foundEnvFile := godotenv.Load() == nil

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		AppURL:     strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DBURL:      os.Getenv("DB_URL"),
		CORSOrigin: getEnv("CORS_ORIGIN", "http://localhost:3000"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		StripePriceBasic:      getEnv("STRIPE_PRICE_BASIC", "price_basic"),
		StripePricePro:        getEnv("STRIPE_PRICE_PRO", "price_pro"),
		StripePriceEnterprise: getEnv("STRIPE_PRICE_ENTERPRISE", "price_enterprise"),

		AuthIssuerURL: os.Getenv("AUTH_ISSUER_URL"),
		AuthJWKSURL:   os.Getenv("AUTH_JWKS_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),

		AyrshareAPIURL: strings.TrimRight(getEnv("AYRSHARE_API_URL", "https://app.ayrshare.com/api"), "/"),
		AyrshareAPIKey: os.Getenv("AYRSHARE_API_KEY"),

		AdminAuthIDs: splitList(os.Getenv("ADMIN_AUTH_IDS")),
	}

	tolerance, err := time.ParseDuration(getEnv("STRIPE_WEBHOOK_TOLERANCE", "5m"))
	if err != nil {
		return nil, foundEnvFile, errors.Wrap(err, "invalid STRIPE_WEBHOOK_TOLERANCE")
	}
	cfg.StripeWebhookTolerance = tolerance

	if err := cfg.validate(); err != nil {
		return nil, foundEnvFile, err
	}
	return cfg, foundEnvFile, nil
}

func (c *Config) validate() error {
	var missing []string
	required := map[string]string{
		"DB_URL":                c.DBURL,
		"STRIPE_SECRET_KEY":     c.StripeSecretKey,
		"STRIPE_WEBHOOK_SECRET": c.StripeWebhookSecret,
		"AYRSHARE_API_KEY":      c.AyrshareAPIKey,
	}
	for _, key := range []string{"DB_URL", "STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET", "AYRSHARE_API_KEY"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}

	// Either the auth provider's issuer or a local HMAC secret must be set.
	if c.AuthIssuerURL == "" && c.JWTSecret == "" {
		missing = append(missing, "AUTH_ISSUER_URL or JWT_SECRET")
	}

	if len(missing) > 0 {
		return errors.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
