package validation

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const MaxNameLength = 100

// ValidateName checks a display name and returns it trimmed.
func ValidateName(name string) (string, error) {
	trimmed := norm.NFC.String(strings.TrimSpace(name))

	if trimmed == "" {
		return "", newError("name", "is required")
	}

	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return "", newError("name", "is too long (max %d characters)", MaxNameLength)
	}

	return trimmed, nil
}
