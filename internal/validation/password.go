package validation

import (
	"strings"
)

var commonPasswordPatterns = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "monkey", "dragon", "master", "sunshine",
	"stoic",
}

// ValidatePassword enforces 12 to 72 bytes and blocks common patterns.
// bcrypt truncates input past 72 bytes.
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return newError("password", "must be at least 12 characters")
	}

	if len(password) > 72 {
		return newError("password", "must not exceed 72 bytes")
	}

	lower := strings.ToLower(password)
	for _, pattern := range commonPasswordPatterns {
		if strings.Contains(lower, pattern) {
			return newError("password", "is too common, please choose a stronger one")
		}
	}

	return nil
}
