package security

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/phibia/phibia-go/internal/conf"
	"github.com/phibia/phibia-go/internal/errors"
)

// AccessCookieName is the cookie the browser client stores the token in.
// The name matches what the web frontend expects.
const AccessCookieName = "access_token_cookie"

// Sentinel errors for token verification failures.
var (
	ErrInvalidToken = errors.NewStd("invalid or expired token")
)

// TokenService issues and verifies HS256 signed tokens carrying the user ID
// as subject.
type TokenService struct {
	secret       []byte
	ttl          time.Duration
	secureCookie bool
}

// NewTokenService builds a token service from the security settings.
func NewTokenService(settings *conf.SecuritySettings) *TokenService {
	return &TokenService{
		secret:       []byte(settings.JWTSecret),
		ttl:          time.Duration(settings.TokenTTL) * time.Hour,
		secureCookie: settings.SecureCookie,
	}
}

// Issue creates a signed token for the given user ID.
func (ts *TokenService) Issue(userID uint) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryAuth).
			Component("security").
			Context("operation", "issue_token").
			Build()
	}
	return signed, nil
}

// Verify parses the token and returns the user ID it was issued for.
// Any failure (malformed, expired, wrong signature, non-numeric subject)
// is reported as ErrInvalidToken.
func (ts *TokenService) Verify(tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf("unexpected signing method: %v", token.Header["alg"]).Build()
		}
		return ts.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(userID), nil
}

// NewCookie wraps a signed token in the HttpOnly cookie the frontend expects.
func (ts *TokenService) NewCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     AccessCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ts.ttl.Seconds()),
		HttpOnly: true,
		Secure:   ts.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie returns an expired cookie that removes the token from the browser.
func (ts *TokenService) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     AccessCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ts.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
