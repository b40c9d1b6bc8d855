// Package authx provides password hashing for account credentials.
//
// Hashing is a fixed-algorithm pure function with no internal state: bcrypt
// with the default cost. The stored hash embeds its own salt and parameters.
package authx

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
