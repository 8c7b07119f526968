// Package security provides password hashing and cookie token handling.
package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/phibia/phibia-go/internal/errors"
)

// HashPassword returns the bcrypt hash of the given plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.New(err).
			Category(errors.CategoryAuth).
			Component("security").
			Build()
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
