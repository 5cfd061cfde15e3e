package repository

import "strings"

// isUniqueViolation matches SQLite and PostgreSQL unique constraint errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value")
}
