package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("COMMISSION_RATE", "")
	t.Setenv("APP_ENV", "")
	v := viper.New()
	v.Set("DATABASE_URL_DEV", "postgres://dev")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "postgres://dev", cfg.DatabaseURL)
	assert.Equal(t, "0.1", cfg.CommissionRate.String())
	assert.Equal(t, 10*time.Second, cfg.ListingLockTTL)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.False(t, cfg.IsProduction())
}

func TestFromViper_ProductionDatabase(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")
	v.Set("DATABASE_URL_DEV", "postgres://dev")
	v.Set("DATABASE_URL_PROD", "postgres://prod")
	v.Set("COMMISSION_RATE", "0.02")
	v.Set("LISTING_LOCK_TTL", "3s")
	v.Set("LOG_LEVEL", "DEBUG")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://prod", cfg.DatabaseURL)
	assert.Equal(t, "0.02", cfg.CommissionRate.String())
	assert.Equal(t, 3*time.Second, cfg.ListingLockTTL)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestFromViper_InvalidValues(t *testing.T) {
	for _, rate := range []string{"1.5", "-0.1", "ten percent"} {
		v := viper.New()
		v.Set("COMMISSION_RATE", rate)
		_, err := FromViper(v)
		assert.Error(t, err, rate)
	}

	v := viper.New()
	v.Set("LISTING_LOCK_TTL", "0s")
	_, err := FromViper(v)
	assert.Error(t, err)

	v = viper.New()
	v.Set("LOG_LEVEL", "loud")
	_, err = FromViper(v)
	assert.Error(t, err)
}
