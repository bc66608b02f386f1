package validator

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"wastecert-backend/internal/application/certificates"
	"wastecert-backend/internal/application/codegen"
	"wastecert-backend/internal/application/validator"
	"wastecert-backend/internal/middleware"
	"wastecert-backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, app *fiber.App, path string) (int, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestLookup(t *testing.T) {
	db := testutil.NewDB(t)
	e1 := testutil.SeedEntity(t, db, "Padaria Central", "12345678000199")
	paper := testutil.SeedResidueType(t, db, "Paper")
	c1 := testutil.SeedCollection(t, db, testutil.Collection{Code: "COL-001", Entity: e1, CollectedAt: testutil.Day(2026, 3, 2), TotalValue: "50.00",
		Lines: []testutil.Line{{Type: paper, Quantity: "100", Value: "50.00"}}})

	store := &certificates.GormStore{DB: db}
	issued, err := (&certificates.Issuer{Store: store, Codes: &codegen.Generator{}}).Issue(context.Background(), certificates.IssueRequest{
		Requester:     testutil.Admin(),
		CollectionIDs: []uuid.UUID{c1.ID},
	})
	require.NoError(t, err)

	h := &Handlers{Validator: &validator.Validator{DB: db, BaseURL: "https://wastecert.example"}}
	app := fiber.New()
	app.Get("/api/v1/public/certificates/:code", h.Lookup)

	status, body := get(t, app, "/api/v1/public/certificates/"+issued.Code)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"total_quantity":"100"`)
	assert.Contains(t, body, `"entity_name":"Padaria Central"`)
	assert.Contains(t, body, "https://wastecert.example/validate/"+issued.Code)

	unknownStatus, unknownBody := get(t, app, "/api/v1/public/certificates/CERT-20260101-ZZZZZZZZZZZZZZZZZZZZ")
	malformedStatus, malformedBody := get(t, app, "/api/v1/public/certificates/garbage")

	_, err = (&certificates.Revoker{Store: store}).Revoke(context.Background(), certificates.RevokeRequest{
		Requester:     testutil.Admin(),
		CertificateID: issued.CertificateID,
	})
	require.NoError(t, err)
	revokedStatus, revokedBody := get(t, app, "/api/v1/public/certificates/"+issued.Code)

	assert.Equal(t, fiber.StatusNotFound, unknownStatus)
	assert.Equal(t, unknownStatus, malformedStatus)
	assert.Equal(t, unknownStatus, revokedStatus)
	assert.Equal(t, unknownBody, malformedBody)
	assert.Equal(t, unknownBody, revokedBody)
	assert.Contains(t, unknownBody, invalidMessage)
}

func TestLookup_RateLimited(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	h := &Handlers{Validator: &validator.Validator{DB: testutil.NewDB(t)}}
	app := fiber.New()
	app.Get("/api/v1/public/certificates/:code",
		middleware.RateLimit(rdb, middleware.RateLimitConfig{Name: "validator", Limit: 2, Window: time.Minute}),
		h.Lookup)

	for i := 0; i < 2; i++ {
		status, _ := get(t, app, "/api/v1/public/certificates/garbage")
		assert.Equal(t, fiber.StatusNotFound, status)
	}
	status, _ := get(t, app, "/api/v1/public/certificates/garbage")
	assert.Equal(t, fiber.StatusTooManyRequests, status)
}
