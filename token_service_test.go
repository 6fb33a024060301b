package admin_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	admin "github.com/phxbinh/admin-page"
)

func TestTokenServiceGenerateAndValidate(t *testing.T) {
	svc := admin.NewTokenService([]byte("test-signing-key"), 24, "admin-page-test", nil)

	token, err := svc.Generate("subject-1", "boss@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	assert.Equal(t, "subject-1", claims.UserID())
	assert.Equal(t, "boss@example.com", claims.Email)
	assert.Equal(t, "admin-page-test", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenServiceRejectsWrongKey(t *testing.T) {
	minter := admin.NewTokenService([]byte("key-one"), 1, "admin-page-test", nil)
	verifier := admin.NewTokenService([]byte("key-two"), 1, "admin-page-test", nil)

	token, err := minter.Generate("subject-1", "a@b.co")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestTokenServiceRejectsWrongIssuer(t *testing.T) {
	minter := admin.NewTokenService([]byte("shared-key"), 1, "somewhere-else", nil)
	verifier := admin.NewTokenService([]byte("shared-key"), 1, "admin-page-test", nil)

	token, err := minter.Generate("subject-1", "a@b.co")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestTokenServiceExpiredTokenIsSessionNotFound(t *testing.T) {
	svc := admin.NewTokenService([]byte("test-signing-key"), 1, "admin-page-test", nil)

	claims := &admin.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "admin-page-test",
			Subject:   "subject-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UID: "subject-1",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, admin.ErrSessionNotFound)
}

func TestTokenServiceRejectsMalformedToken(t *testing.T) {
	svc := admin.NewTokenService([]byte("test-signing-key"), 1, "admin-page-test", nil)

	_, err := svc.Validate("not-a-token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token")
}

func TestSessionClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := &admin.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"},
	}
	assert.Equal(t, "sub-1", claims.UserID())

	claims.UID = "uid-1"
	assert.Equal(t, "uid-1", claims.UserID())
}
