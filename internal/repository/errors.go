// Package repository defines the stores behind the HTTP handlers and the
// error values they share.  These sentinel values allow higher layers such
// as handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when no row matches the requested identifier.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicateName is returned when a fitness center name collides with an
// existing row.  It surfaces as a field error on `name`, never as a 500.
var ErrDuplicateName = errors.New("fitness center name already exists")

// ErrDuplicateUsername and ErrDuplicateEmail are returned by user stores
// when the account store's unique constraints reject an insert.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// ErrInvalidOrdering is returned when an ordering key names a field that
// cannot be sorted on.
var ErrInvalidOrdering = errors.New("invalid ordering field")

// mysqlDuplicateEntry is the server error number for unique key violations.
const mysqlDuplicateEntry = 1062

// duplicateKey reports whether err is a MySQL unique violation and, if so,
// returns the server message so callers can tell which index fired.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return strings.ToLower(me.Message), true
	}
	return "", false
}
