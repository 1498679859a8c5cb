package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-long-enough-0123456789"

func TestPrincipal(t *testing.T) {
	var anon Principal
	assert.True(t, anon.Anonymous())
	assert.False(t, anon.Owns(0))
	assert.False(t, anon.CanManageUser(1))

	user := Principal{UserID: 3}
	assert.True(t, user.Owns(3))
	assert.True(t, user.CanManageUser(3))
	assert.False(t, user.CanManageUser(4))

	admin := Principal{UserID: 1, IsAdmin: true}
	assert.True(t, admin.CanManageUser(4))
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasherWithCost(bcrypt.MinCost)

	hash, err := h.Hash("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)

	assert.True(t, h.Verify("supersecret", hash))
	assert.False(t, h.Verify("wrong-password", hash))
	assert.False(t, h.Verify("supersecret", "not-a-hash"))
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	token, expiresAt, err := svc.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), userID)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService(testSecret, time.Minute)
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, _, err := svc.Issue(1)
	require.NoError(t, err)

	svc.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_Rejects(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	other := NewTokenService("another-secret-that-is-long-enough-xyz", time.Hour)

	foreign, _, err := other.Issue(1)
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:  tokenIssuer,
		Subject: "1",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not.a.token",
		"wrong secret":   foreign,
		"none algorithm": noneAlg,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Validate(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
