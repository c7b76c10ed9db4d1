// Package authutil holds password rules and hashing shared by the user and
// admin account flows.
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	BcryptCost        = 10
)

var (
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	ErrPasswordCommon   = errors.New("password is too common")
)

var commonPasswords = map[string]bool{
	"123456": true, "1234567": true, "12345678": true, "123456789": true,
	"password": true, "password1": true, "qwerty": true, "qwerty123": true,
	"abc123": true, "111111": true, "123123": true, "iloveyou": true,
	"letmein": true, "football": true, "welcome": true, "monkey": true,
	"dragon": true, "sunshine": true, "admin123": true, "passw0rd": true,
}

// ValidatePassword checks length and rejects well-known passwords,
// case-insensitively.
func ValidatePassword(pw string) error {
	switch {
	case len(pw) < MinPasswordLength:
		return ErrPasswordTooShort
	case len(pw) > MaxPasswordLength:
		return ErrPasswordTooLong
	case commonPasswords[strings.ToLower(pw)]:
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules describes ValidatePassword for API error messages.
func PasswordRules() string {
	return fmt.Sprintf("Password must be %d to %d characters and not a common password.", MinPasswordLength, MaxPasswordLength)
}

// HashPassword returns the bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether pw matches hash.
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
