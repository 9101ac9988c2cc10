package validation

import (
	"regexp"
	"unicode"
)

// emailRe: /^[^\s@]+@[^\s@]+\.[^\s@]+$/
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Usernames: letters, digits, dot, underscore, hyphen.
var usernameRe = regexp.MustCompile(`^[A-Za-z0-9._\-]{3,64}$`)

// Phone numbers: optional leading +, then digits, spaces or hyphens.
var phoneRe = regexp.MustCompile(`^\+?[0-9\s\-]{6,15}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires:
// - at least 8 characters
// - at least one letter
// - at least one number
// - at least one special character
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(phone)
}
