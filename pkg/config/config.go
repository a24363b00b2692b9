package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Exchange rate provider chain, in priority order.
	FXProviders       []string
	FXProviderTimeout time.Duration
	FXCacheTTL        time.Duration
	BCVCacheTTL       time.Duration
	BinanceCacheTTL   time.Duration
	FXVerifyTLS       bool

	// Per-IP throttle on the forced provider refresh endpoint.
	FXRefreshLimitPeriod time.Duration
	FXRefreshLimitCount  int64

	CORSAllowedOrigins []string

	// Conversion method classification sets. Never derived from rate
	// magnitude.
	StrongCurrencies []string
	WeakCurrencies   []string

	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "fxcore-backend")
	viper.SetDefault("FX_PROVIDERS", "bcv,binance,static")
	viper.SetDefault("FX_PROVIDER_TIMEOUT", "30s")
	viper.SetDefault("FX_CACHE_TTL", "5m")
	viper.SetDefault("BCV_CACHE_TTL", "1h")
	viper.SetDefault("BINANCE_CACHE_TTL", "5m")
	viper.SetDefault("FX_VERIFY_TLS", true)
	viper.SetDefault("FX_REFRESH_LIMIT_PERIOD", "1m")
	viper.SetDefault("FX_REFRESH_LIMIT_COUNT", 5)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("STRONG_CURRENCIES", "USD,EUR,GBP,CHF,USDT")
	viper.SetDefault("WEAK_CURRENCIES", "COP,ARS,CLP")
	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.JWTExpiryDuration = parseDurationOr("JWT_EXPIRY_DURATION", time.Hour)

	cfg.FXProviders = splitList(viper.GetString("FX_PROVIDERS"))
	cfg.FXProviderTimeout = parseDurationOr("FX_PROVIDER_TIMEOUT", 30*time.Second)
	cfg.FXCacheTTL = parseDurationOr("FX_CACHE_TTL", 5*time.Minute)
	cfg.BCVCacheTTL = parseDurationOr("BCV_CACHE_TTL", time.Hour)
	cfg.BinanceCacheTTL = parseDurationOr("BINANCE_CACHE_TTL", 5*time.Minute)
	cfg.FXVerifyTLS = viper.GetBool("FX_VERIFY_TLS")
	if !cfg.FXVerifyTLS {
		log.Println("Warning: FX_VERIFY_TLS is disabled. Provider TLS certificates will not be verified.")
	}

	cfg.FXRefreshLimitPeriod = parseDurationOr("FX_REFRESH_LIMIT_PERIOD", time.Minute)
	cfg.FXRefreshLimitCount = viper.GetInt64("FX_REFRESH_LIMIT_COUNT")

	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.StrongCurrencies = splitList(viper.GetString("STRONG_CURRENCIES"))
	cfg.WeakCurrencies = splitList(viper.GetString("WEAK_CURRENCIES"))

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		}
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
