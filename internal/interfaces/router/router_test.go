package router

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"wastecert-backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	app, db, rdb, err := CreateApp(&config.Config{
		Env:                 "test",
		RedisURL:            "redis://" + mr.Addr(),
		HealthAdminKey:      "k",
		ValidatorRateLimit:  5,
		ValidatorRateWindow: time.Minute,
		CodeMaxAttempts:     3,
	})
	require.NoError(t, err)
	assert.Nil(t, db)
	t.Cleanup(func() { _ = rdb.Close() })
	return app
}

func TestCreateApp_WithoutDatabase(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health/json", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/certificates/eligible", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/auth/me", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateApp_ExposesMetrics(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestCreateApp_BadRedisURL(t *testing.T) {
	_, _, _, err := CreateApp(&config.Config{RedisURL: "not a url"})
	assert.Error(t, err)
}
