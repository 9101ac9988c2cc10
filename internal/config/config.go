package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"scrapmarket-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	defaultPort           = "8080"
	defaultCommissionRate = "0.10"
	defaultLockTTL        = 10 * time.Second
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	LogLevel            zerolog.Level
	CommissionRate      domain.Rate   // COMMISSION_RATE, platform share of each sale
	ListingLockTTL      time.Duration // LISTING_LOCK_TTL, expiry of the per-listing lock
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("COMMISSION_RATE", defaultCommissionRate)
	v.SetDefault("LISTING_LOCK_TTL", defaultLockTTL.String())

	env := v.GetString("APP_ENV")

	dbURL := v.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = v.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = v.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	rate, err := domain.ParseRate(strings.TrimSpace(v.GetString("COMMISSION_RATE")))
	if err != nil {
		return nil, fmt.Errorf("COMMISSION_RATE: %w", err)
	}
	ttl := v.GetDuration("LISTING_LOCK_TTL")
	if ttl <= 0 {
		return nil, fmt.Errorf("LISTING_LOCK_TTL must be a positive duration, got %q", v.GetString("LISTING_LOCK_TTL"))
	}
	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("LOG_LEVEL")))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return &Config{
		Env:                 env,
		Port:                v.GetString("PORT"),
		SessionSecret:       v.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            v.GetString("REDIS_URL"),
		FrontendURLEndsWith: v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(v.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      v.GetString("HEALTH_ADMIN_KEY"),
		LogLevel:            level,
		CommissionRate:      rate,
		ListingLockTTL:      ttl,
	}, nil
}

func (c *Config) IsProduction() bool { return c.Env == "production" }
