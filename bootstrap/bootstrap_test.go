package bootstrap

import (
	"testing"

	"wastecert-backend/internal/config"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogger_Level(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	SetupLogger(&config.Config{Env: "production", LogLevel: "warn"})
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	SetupLogger(&config.Config{Env: "production", LogLevel: "loud"})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	SetupLogger(&config.Config{Env: "production", LogLevel: ""})
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
