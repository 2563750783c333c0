package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/harborcrest/pms/internal/apperr"
)

// bcryptCost is the work factor for all password hashes.
const bcryptCost = 12

const specialChars = "!@#$%^&*(),.?\":{}|<>_-+=[]\\';/~`"

// weakPasswords is a curated substring denylist checked case-insensitively.
var weakPasswords = []string{
	"password", "password123", "12345678", "qwerty123", "abc123456",
	"password1", "welcome123", "admin123", "letmein123", "monkey123",
}

// ValidatePassword enforces the complexity policy. Check order is fixed:
// length bounds, then character classes, then the weak-password list.
// Callers and tests depend on message identity.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return apperr.BadRequest("Password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return apperr.BadRequest("Password must not exceed 128 characters")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if strings.ContainsRune(specialChars, r) {
			hasSpecial = true
		}
	}
	if !hasUpper {
		return apperr.BadRequest("Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return apperr.BadRequest("Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return apperr.BadRequest("Password must contain at least one number")
	}
	if !hasSpecial {
		return apperr.BadRequest("Password must contain at least one special character")
	}

	lowered := strings.ToLower(password)
	for _, weak := range weakPasswords {
		if strings.Contains(lowered, weak) {
			return apperr.BadRequest("Password is too common or weak")
		}
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
