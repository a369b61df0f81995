package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := &BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := hasher.Hash("StrongPass123!")
	require.NoError(t, err)
	assert.NotEqual(t, "StrongPass123!", hash)

	assert.True(t, hasher.Check("StrongPass123!", hash))
	assert.False(t, hasher.Check("WrongPass123!", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check("StrongPass123!", "invalid_hash"))
}

func TestGeneratePIN(t *testing.T) {
	pin, err := GeneratePIN(8)
	require.NoError(t, err)
	require.Len(t, pin, 8)
	for _, c := range pin {
		assert.Contains(t, pinAlphabet, string(c))
	}
}

func TestTokenRoundTrip(t *testing.T) {
	manager, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)

	token, err := manager.Issue("user-1", "admin")
	require.NoError(t, err)

	claims, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenRejectsExpired(t *testing.T) {
	manager, err := NewTokenManager("secret", time.Minute)
	require.NoError(t, err)
	manager.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := manager.Issue("user-1", "admin")
	require.NoError(t, err)

	manager.now = time.Now
	_, err = manager.Parse(token)
	require.Error(t, err)
}

func TestTokenRejectsForeignSecret(t *testing.T) {
	issuer, err := NewTokenManager("one", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenManager("two", time.Hour)
	require.NoError(t, err)

	token, err := issuer.Issue("user-1", "admin")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	require.Error(t, err)
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	require.Error(t, err)
}

func TestClaimsContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &Claims{UserID: "u"})
	claims, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", claims.UserID)
}
