package auth

import (
	"context"
	"testing"

	"wastecert-backend/internal/domain"
	"wastecert-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoUserID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"fullname": "Test",
		"email":    "a@b.com",
	})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id":   "550e8400-e29b-41d4-a716-446655440000",
		"fullname":  "Test User",
		"email":     "test@example.com",
		"role":      "operator",
		"entity_id": "660e8400-e29b-41d4-a716-446655440000",
	})
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.UserID)
	assert.Equal(t, "operator", u.Role)
	require.NotNil(t, u.EntityID)
	assert.Equal(t, "660e8400-e29b-41d4-a716-446655440000", *u.EntityID)
}

func TestVerifyUser_NilEntityID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id":   "550e8400-e29b-41d4-a716-446655440000",
		"role":      "admin",
		"entity_id": nil,
	})
	require.NoError(t, err)
	assert.Nil(t, u.EntityID)
}

func TestRequester(t *testing.T) {
	entity := uuid.NewString()
	req, err := (&SessionUserShape{UserID: "u1", Role: "operator", EntityID: &entity}).Requester()
	require.NoError(t, err)
	assert.False(t, req.Admin)
	require.NotNil(t, req.EntityID)
	assert.Equal(t, entity, req.EntityID.String())

	admin, err := (&SessionUserShape{UserID: "u2", Role: "superadmin"}).Requester()
	require.NoError(t, err)
	assert.True(t, admin.Admin)
	assert.Nil(t, admin.EntityID)

	bad := "not-a-uuid"
	_, err = (&SessionUserShape{UserID: "u3", Role: "viewer", EntityID: &bad}).Requester()
	assert.ErrorIs(t, err, ErrInvalidEntity)
}

func TestLoginUser(t *testing.T) {
	db := testutil.NewDB(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!pass"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{Fullname: "Ana", Email: "ana@example.com", PasswordHash: string(hash), Role: "operator"}).Error)
	ctx := context.Background()

	u, err := LoginUser(ctx, db, LoginInput{Email: " Ana@Example.com ", Password: "s3cret!pass"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Fullname)

	_, err = LoginUser(ctx, db, LoginInput{Email: "ana@example.com", Password: "wrong"})
	assert.Equal(t, ErrIncorrectPassword, err)

	_, err = LoginUser(ctx, db, LoginInput{Email: "nobody@example.com", Password: "x"})
	assert.Equal(t, ErrInvalidEmail, err)

	_, err = LoginUser(ctx, db, LoginInput{Email: "ana@example.com"})
	assert.Equal(t, ErrEmailPasswordRequired, err)
}
