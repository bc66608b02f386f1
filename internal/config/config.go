package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	LogLevel            string
	SessionSecret       string
	DatabaseURL         string
	DBAutoMigrate       bool
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	CookieDomain        string
	HealthAdminKey      string

	PublicValidationBaseURL string
	ValidatorRateLimit      int
	ValidatorRateWindow     time.Duration
	CodeMaxAttempts         int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("VALIDATOR_RATE_LIMIT", 30)
	v.SetDefault("VALIDATOR_RATE_WINDOW", "1m")
	v.SetDefault("CODE_MAX_ATTEMPTS", 5)
}

// Load reads config from the environment and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	env := strings.ToLower(v.GetString("APP_ENV"))

	dbURL := v.GetString("DATABASE_URL_DEV")
	switch env {
	case "production":
		dbURL = v.GetString("DATABASE_URL_PROD")
	case "test":
		dbURL = v.GetString("DATABASE_URL_TEST")
	}

	window := v.GetDuration("VALIDATOR_RATE_WINDOW")
	if window <= 0 {
		return nil, fmt.Errorf("VALIDATOR_RATE_WINDOW must be a positive duration, got %q", v.GetString("VALIDATOR_RATE_WINDOW"))
	}
	attempts := v.GetInt("CODE_MAX_ATTEMPTS")
	if attempts < 1 {
		return nil, fmt.Errorf("CODE_MAX_ATTEMPTS must be at least 1, got %d", attempts)
	}

	cfg := &Config{
		Env:                     env,
		Port:                    v.GetString("PORT"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		SessionSecret:           v.GetString("SESSION_SECRET"),
		DatabaseURL:             dbURL,
		DBAutoMigrate:           v.GetBool("DB_AUTO_MIGRATE"),
		RedisURL:                v.GetString("REDIS_URL"),
		FrontendURLEndsWith:     v.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:             v.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:       v.GetBool("ALLOW_CROSS_SITE_DEV"),
		CookieDomain:            v.GetString("COOKIE_DOMAIN"),
		HealthAdminKey:          v.GetString("HEALTH_ADMIN_KEY"),
		PublicValidationBaseURL: strings.TrimSpace(v.GetString("PUBLIC_VALIDATION_BASE_URL")),
		ValidatorRateLimit:      v.GetInt("VALIDATOR_RATE_LIMIT"),
		ValidatorRateWindow:     window,
		CodeMaxAttempts:         attempts,
	}
	if cfg.Env == "production" && cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required in production")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
