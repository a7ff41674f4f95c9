package store

import (
	"errors"
	"strings"
)

// ErrDuplicateEmail is returned when an account insert violates the email
// uniqueness constraint. The constraint is the authoritative guard: two
// concurrent registrations for the same address cannot both succeed.
var ErrDuplicateEmail = errors.New("email already registered")

// mapAccountInsertErr converts a driver-level unique constraint violation on
// accounts.email into ErrDuplicateEmail. Works for both the modernc and mattn
// drivers, which include the constraint name in the error text.
func mapAccountInsertErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed: accounts.email") {
		return ErrDuplicateEmail
	}
	return err
}
