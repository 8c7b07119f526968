package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phibia/phibia-go/internal/conf"
)

func newTestTokenService() *TokenService {
	return NewTokenService(&conf.SecuritySettings{
		JWTSecret: "test-secret-key",
		TokenTTL:  1,
	})
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	ts := newTestTokenService()

	token, err := ts.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	t.Parallel()
	ts := newTestTokenService()

	for _, token := range []string{"", "invalid-token-12345", "a.b.c"} {
		_, err := ts.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q must be rejected", token)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenService(&conf.SecuritySettings{JWTSecret: "secret-a", TokenTTL: 1})
	verifier := NewTokenService(&conf.SecuritySettings{JWTSecret: "secret-b", TokenTTL: 1})

	token, err := issuer.Issue(7)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	t.Parallel()

	ts := newTestTokenService()
	ts.ttl = -time.Minute

	token, err := ts.Issue(7)
	require.NoError(t, err)

	_, err = ts.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCookieFlags(t *testing.T) {
	t.Parallel()
	ts := newTestTokenService()

	cookie := ts.NewCookie("token-value")
	assert.Equal(t, AccessCookieName, cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Positive(t, cookie.MaxAge)

	cleared := ts.ClearCookie()
	assert.Equal(t, AccessCookieName, cleared.Name)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPassword(hash, "password123"))
	assert.False(t, CheckPassword(hash, "wrongpassword"))
	assert.False(t, CheckPassword("!", "password123"), "guest sentinel hash must never match")
}
