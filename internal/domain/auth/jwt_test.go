package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/appctx"
	"stockledger/internal/core/id"
	"stockledger/pkg/config"
)

func newTestService(secret string) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     secret,
		Expiration: time.Hour,
		Issuer:     "stockledger-test",
	})
}

func TestJWT_RoundTrip(t *testing.T) {
	svc := newTestService("test-secret")

	scope := &appctx.RequestScope{
		UserID:    "user-1",
		CompanyID: id.New(),
		BranchID:  id.New(),
		Email:     "user@example.com",
		Roles:     []string{"manager"},
	}

	token, expiresAt, err := svc.GenerateAccessToken(scope)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, scope.UserID, got.UserID)
	assert.Equal(t, scope.CompanyID, got.CompanyID)
	assert.Equal(t, scope.BranchID, got.BranchID)
	assert.Equal(t, scope.Email, got.Email)
	assert.Equal(t, scope.Roles, got.Roles)
	assert.False(t, got.IsAdmin)
}

func TestJWT_NoBranchClaim(t *testing.T) {
	svc := newTestService("test-secret")

	token, _, err := svc.GenerateAccessToken(&appctx.RequestScope{
		UserID:    "user-1",
		CompanyID: id.New(),
	})
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, id.IsNil(got.BranchID))
}

func TestJWT_WrongSecret(t *testing.T) {
	issuer := newTestService("secret-a")
	verifier := newTestService("secret-b")

	token, _, err := issuer.GenerateAccessToken(&appctx.RequestScope{
		UserID:    "user-1",
		CompanyID: id.New(),
	})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_Garbage(t *testing.T) {
	svc := newTestService("test-secret")

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
