package repository

import (
	"errors"
	"strings"
)

// Sentinel errors shared by the entity and link stores. Handlers match
// them with errors.Is and translate to HTTP responses.
var (
	// ErrValidation marks bad or missing user input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks a link pair that already exists.
	ErrConflict = errors.New("relationship already exists")
	// ErrMissingReference marks a link whose owner or target id does not
	// resolve to an existing row.
	ErrMissingReference = errors.New("referenced entity does not exist")
	// ErrIntegrity marks a relational invariant violated in the table
	// itself, e.g. two owner rows for one song.
	ErrIntegrity = errors.New("relational integrity violation")
	// ErrDuplicateUser marks a username that is already registered.
	ErrDuplicateUser = errors.New("username already exists")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// isDuplicateEntry reports whether err is a MySQL unique-constraint
// violation (error 1062).
func isDuplicateEntry(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1062") || strings.Contains(msg, "Duplicate entry")
}

// isForeignKeyViolation reports whether err is a MySQL foreign-key
// failure (errors 1451/1452).
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Error 1452") || strings.Contains(msg, "Error 1451") ||
		strings.Contains(msg, "foreign key constraint")
}
