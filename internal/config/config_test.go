package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(values map[string]interface{}) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]interface{}{"DATABASE_URL_DEV": "postgres://dev"}))
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://dev", cfg.DatabaseURL)
	assert.Equal(t, 30, cfg.ValidatorRateLimit)
	assert.Equal(t, time.Minute, cfg.ValidatorRateWindow)
	assert.Equal(t, 5, cfg.CodeMaxAttempts)
	assert.False(t, cfg.DBAutoMigrate)
	assert.False(t, cfg.IsProduction())
}

func TestFromViper_ProductionDatabase(t *testing.T) {
	cfg, err := FromViper(newViper(map[string]interface{}{
		"APP_ENV":           "production",
		"DATABASE_URL_DEV":  "postgres://dev",
		"DATABASE_URL_PROD": "postgres://prod",
		"SESSION_SECRET":    "s",
		"DB_AUTO_MIGRATE":   "true",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://prod", cfg.DatabaseURL)
	assert.True(t, cfg.DBAutoMigrate)
	assert.True(t, cfg.IsProduction())
}

func TestFromViper_Rejects(t *testing.T) {
	_, err := FromViper(newViper(map[string]interface{}{"APP_ENV": "production"}))
	assert.ErrorContains(t, err, "SESSION_SECRET")

	_, err = FromViper(newViper(map[string]interface{}{"CODE_MAX_ATTEMPTS": 0}))
	assert.ErrorContains(t, err, "CODE_MAX_ATTEMPTS")

	_, err = FromViper(newViper(map[string]interface{}{"VALIDATOR_RATE_WINDOW": "soon"}))
	assert.ErrorContains(t, err, "VALIDATOR_RATE_WINDOW")
}
