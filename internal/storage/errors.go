// ABOUTME: Sentinel error taxonomy for the storage layer.
// ABOUTME: Callers match with errors.Is; repository methods wrap these with context.
package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when mutating a session, exercise, or library
	// entry whose id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConstraint is returned on a uniqueness or check-constraint breach,
	// e.g. a duplicate library (name, body part) pair.
	ErrConstraint = errors.New("constraint violation")

	// ErrInvalidFormat is returned when a backup document fails to parse or
	// is missing its format marker.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrConnection is returned when the store cannot be opened or the
	// schema cannot be created.
	ErrConnection = errors.New("connection error")
)

// wrapWriteErr maps SQLite UNIQUE and CHECK failures onto ErrConstraint so
// callers can match the taxonomy instead of driver error strings.
func wrapWriteErr(op string, err error) error {
	if isConstraintErr(err) {
		return fmt.Errorf("%s: %v: %w", op, err, ErrConstraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "constraint")
}
