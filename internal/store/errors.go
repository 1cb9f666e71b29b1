package store

import "strings"

// IsConstraintError checks if the error is a SQLite constraint violation,
// such as inserting a row whose primary key already exists.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "constraint failed")
}
